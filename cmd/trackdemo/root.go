package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grindlemire/go-track/internal/config"
	"github.com/grindlemire/go-track/internal/logging"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "trackdemo",
		Short:         "Animated demo of element geometry tracking",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./track.yaml)")
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	root.AddCommand(newRunCmd(&cfgFile), newVersionCmd())
	return root
}

func newRunCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Animate a scene and print tracked changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(*cfgFile)
			if err != nil {
				return err
			}
			if err := bindFlags(cmd, v); err != nil {
				return err
			}
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}

			log, err := logging.New(cfg.Logging, zapcore.Lock(os.Stderr))
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			log.Debug("starting demo",
				zap.Int("frame_rate", cfg.FrameRate),
				zap.Int("boxes", cfg.Demo.Boxes),
				zap.Int("frames", cfg.Demo.Frames),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d := &demo{cfg: cfg, log: log, out: cmd.OutOrStdout(), clock: clock.WallClock}
			sum, err := d.run(ctx)
			if errors.Is(err, context.Canceled) {
				log.Info("demo interrupted")
				err = nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(sum))
			return nil
		},
	}

	cmd.Flags().Int("frame-rate", 0, "frames per second (1-240)")
	cmd.Flags().Int("boxes", 0, "number of moving boxes")
	cmd.Flags().Int("frames", 0, "frames to run before exiting")
	return cmd
}

// bindFlags maps explicitly set flags onto their config keys, so flags win
// over the file and the environment.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	keys := map[string]string{
		"frame-rate": "frame_rate",
		"boxes":      "demo.boxes",
		"frames":     "demo.frames",
	}
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Annotatef(err, "binding --%s", flag)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trackdemo version %s\n", version)
		},
	}
}
