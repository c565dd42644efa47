package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// NewApp creates a cli.App with the metadata and help/version flag
// categorization every mc-crawler binary shares.
func NewApp(gitCommit, gitDate, usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = versionString(gitCommit, gitDate)
	app.Usage = usage
	app.Copyright = "Copyright 2026 The mc-crawler Authors"
	app.Before = func(ctx *cli.Context) error {
		return nil
	}
	return app
}

func versionString(gitCommit, gitDate string) string {
	v := "dev"
	if gitCommit != "" {
		if len(gitCommit) > 8 {
			gitCommit = gitCommit[:8]
		}
		v = fmt.Sprintf("dev-%s", gitCommit)
	}
	if gitDate != "" {
		v = fmt.Sprintf("%s-%s", v, gitDate)
	}
	return v
}
