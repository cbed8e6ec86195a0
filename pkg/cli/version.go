package cli

// Version is the build version, overridden at release time with
// -ldflags "-X github.com/pictools/labrador/pkg/cli.Version=1.2.3".
var Version = "0.0.0-dev"
