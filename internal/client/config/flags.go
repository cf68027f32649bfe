package config

import (
	"flag"
	"os"
	"time"

	"github.com/trailfield/trailfield/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the sync server (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-d string   path of the local queue database
//	-e string   template-mail endpoint (empty disables the email channel)
//	-k string   access key for the mail endpoint
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-d", "-e", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the sync server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabaseFile, "d", cfg.DatabaseFile, "path of the local queue database")
	fs.StringVar(&cfg.EmailEndpoint, "e", cfg.EmailEndpoint, "template-mail endpoint")
	fs.StringVar(&cfg.EmailAccessKey, "k", cfg.EmailAccessKey, "access key for the mail endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
