package secretai

// Version is the SDK release.
const Version = "0.1.0"
