package ir

// ToolVersion is the cmdtrack version.
const ToolVersion = "0.1.0"
