package types

// AppName is the CLI application name
const AppName = "examport"

// Version is set via -ldflags at build time
var Version = "dev"
