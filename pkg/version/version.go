package version

// Version identifies the running build in startup logs. Release builds stamp
// it with -ldflags "-X github.com/shishobooks/locallibrary/pkg/version.Version=v1.2.0".
var Version = "dev"
