package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/zzzzlzzzz/alena"
	"github.com/zzzzlzzzz/alena/client"
	"github.com/zzzzlzzzz/alena/cmd/alena/subcmd"
	"github.com/zzzzlzzzz/alena/config"
	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/logger"
)

func main() {
	app := cli.NewApp()
	app.Name = "alena"
	app.Usage = "Async string task queue"
	app.Version = alena.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Value:  "",
			Usage:  "the yaml config file",
			EnvVar: "ALENA_CONFIG",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "the log level [debug, info, warn, error]",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: 3 * time.Second,
			Usage: "the socket timeout",
		},
		cli.DurationFlag{
			Name:  "interval",
			Value: time.Second,
			Usage: "the status poll interval of post --simple",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "serve",
			Usage:     "Run the task server",
			ArgsUsage: "BIND_ADDR BIND_PORT",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "driver",
					Value: "memstore",
					Usage: "The driver [memstore, leveldb, redis]",
				},
				cli.StringFlag{
					Name:  "dbpath",
					Value: "",
					Usage: "The scratch db path of driver leveldb, wiped on start, empty for memory",
				},
				cli.StringFlag{
					Name:  "redis",
					Value: "tcp://127.0.0.1:6379",
					Usage: "The redis server address, required for driver redis",
				},
				cli.StringFlag{
					Name:  "http",
					Value: "",
					Usage: "The http inspection api address eg: 127.0.0.1:8080",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 1,
					Usage: "The worker count, more than one relaxes completion order",
				},
			},
			Action: action(func(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
				addr, err := hostPort(c, 0)
				if err != nil {
					return err
				}
				if c.IsSet("driver") {
					cfg.Driver = c.String("driver")
				}
				if c.IsSet("dbpath") {
					cfg.DBPath = c.String("dbpath")
				}
				if c.IsSet("redis") {
					cfg.Redis = c.String("redis")
				}
				if c.IsSet("http") {
					cfg.HTTP = c.String("http")
				}
				if c.IsSet("workers") {
					cfg.Workers = c.Int("workers")
				}
				if err = cfg.Validate(); err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return subcmd.Serve(ctx, cfg, addr, log)
			}),
		},
		{
			Name:      "post",
			Usage:     "Post new task",
			ArgsUsage: "ADDR PORT MSG",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "reverse",
					Usage: "Post reverse task",
				},
				cli.BoolFlag{
					Name:  "transposition",
					Usage: "Post transposition task",
				},
				cli.BoolFlag{
					Name:  "simple",
					Usage: "Post task in simple mode, wait for the result",
				},
				cli.BoolFlag{
					Name:  "packet",
					Usage: "Post task in packet mode, print the task id only",
				},
			},
			Action: action(func(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
				addr, err := hostPort(c, 1)
				if err != nil {
					return err
				}
				var t driver.TaskType
				switch {
				case c.Bool("reverse") && !c.Bool("transposition"):
					t = driver.TYPE_REVERSE
				case c.Bool("transposition") && !c.Bool("reverse"):
					t = driver.TYPE_TRANSPOSITION
				default:
					cli.ShowCommandHelp(c, "post")
					return fmt.Errorf("exactly one of --reverse and --transposition is required")
				}
				if c.Bool("simple") == c.Bool("packet") {
					cli.ShowCommandHelp(c, "post")
					return fmt.Errorf("exactly one of --simple and --packet is required")
				}
				cl := client.New(addr, cfg.Timeout, cfg.Interval, log)
				return subcmd.PostTask(context.Background(), os.Stdout, cl, t, c.Args().Get(2), c.Bool("simple"))
			}),
		},
		{
			Name:      "status",
			Usage:     "Get task status",
			ArgsUsage: "ADDR PORT TASK_ID",
			Action: action(func(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
				addr, id, err := taskArgs(c)
				if err != nil {
					return err
				}
				cl := client.New(addr, cfg.Timeout, cfg.Interval, log)
				return subcmd.ShowStatus(context.Background(), os.Stdout, cl, id)
			}),
		},
		{
			Name:      "result",
			Usage:     "Get task result",
			ArgsUsage: "ADDR PORT TASK_ID",
			Action: action(func(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
				addr, id, err := taskArgs(c)
				if err != nil {
					return err
				}
				cl := client.New(addr, cfg.Timeout, cfg.Interval, log)
				return subcmd.ShowResult(context.Background(), os.Stdout, cl, id)
			}),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// action loads the config and the logger before fn runs. A failing fn is
// logged at fatal level.
func action(fn func(c *cli.Context, cfg *config.Config, log *zap.Logger) error) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.GlobalString("config"))
		if err != nil {
			return err
		}
		if c.GlobalIsSet("log-level") {
			cfg.LogLevel = c.GlobalString("log-level")
		}
		if c.GlobalIsSet("timeout") {
			cfg.Timeout = c.GlobalDuration("timeout")
		}
		if c.GlobalIsSet("interval") {
			cfg.Interval = c.GlobalDuration("interval")
		}
		if err = cfg.Validate(); err != nil {
			return err
		}

		logr, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logr.Sync()

		if err = fn(c, cfg, logr); err != nil {
			logr.Fatal(c.Command.Name, zap.Error(err))
		}
		return nil
	}
}

// hostPort joins the address and port arguments and expects extra more.
func hostPort(c *cli.Context, extra int) (string, error) {
	if c.NArg() != 2+extra {
		cli.ShowCommandHelp(c, c.Command.Name)
		return "", fmt.Errorf("%s: expect %d arguments, got %d", c.Command.Name, 2+extra, c.NArg())
	}
	port, err := strconv.ParseUint(c.Args().Get(1), 10, 16)
	if err != nil {
		return "", fmt.Errorf("invalid port %q", c.Args().Get(1))
	}
	return net.JoinHostPort(c.Args().Get(0), strconv.FormatUint(port, 10)), nil
}

func taskArgs(c *cli.Context) (addr string, id uint32, err error) {
	if addr, err = hostPort(c, 1); err != nil {
		return
	}
	var n uint64
	if n, err = strconv.ParseUint(c.Args().Get(2), 10, 32); err != nil {
		err = fmt.Errorf("invalid task id %q", c.Args().Get(2))
		return
	}
	id = uint32(n)
	return
}
