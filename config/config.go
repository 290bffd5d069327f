package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	StaticDir   string
	Debug       bool
}

func ParseFlags() (Config, error) {
	return Parse(os.Args[0], os.Args[1:])
}

func Parse(name string, args []string) (cfg Config, err error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)

	var host string
	flags.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	flags.UintVar(&port, "port", 80, "listen port number")
	flags.StringVar(&cfg.DBUrl, "db-url", "keeper.sqlite", "path to SQLite3 DB file")
	flags.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	var ttl uint
	flags.UintVar(&ttl, "token-ttl", 120, "token TTL in seconds")
	flags.StringVar(&cfg.StaticDir, "static-dir", "out", "directory of the exported front-end, empty to disable")
	flags.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	if err = flags.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

var reAnyHost = regexp.MustCompile(`^0\.0\.0\.0`)

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = reAnyHost.ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
