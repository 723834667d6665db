package internal

// Version is the foodsync release version.
const Version = "0.3.0"
