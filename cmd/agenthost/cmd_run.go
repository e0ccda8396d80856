package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	agentchan "github.com/wagiedev/agent-channel-go"
)

type runFlags struct {
	agent       string
	bufferSize  int
	noHandshake bool
	noStdin     bool
	verbose     bool
	envFile     string
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn the agent and serve its commands until it exits",
		Long: `Spawn the agent and serve its commands until it exits.

Settings come from AGENTCHAN_* environment variables (optionally loaded from
a .env file) and are overridden by flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgent(cmd, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.agent, "agent", "a", "", "Agent executable (overrides AGENTCHAN_AGENT)")
	cmd.Flags().IntVar(&flags.bufferSize, "buffer-size", 0, "Longest agent line in bytes (overrides AGENTCHAN_BUFFER_SIZE)")
	cmd.Flags().BoolVar(&flags.noHandshake, "no-handshake", false, "Do not send \"init\" after the agent starts")
	cmd.Flags().BoolVar(&flags.noStdin, "no-stdin", false, "Do not forward stdin to the agent")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringVar(&flags.envFile, "env-file", ".env", "Environment file to load if present")

	return cmd
}

// buildOptions merges environment settings with flags that were set.
func buildOptions(cmd *cobra.Command, flags *runFlags) ([]agentchan.Option, error) {
	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", flags.envFile, err)
	}

	env, err := agentchan.LoadEnv()
	if err != nil {
		return nil, err
	}

	opts := []agentchan.Option{agentchan.WithEnv(env)}

	if cmd.Flags().Changed("agent") {
		opts = append(opts, agentchan.WithAgentPath(flags.agent))
	}

	if cmd.Flags().Changed("buffer-size") {
		opts = append(opts, agentchan.WithBufferSize(flags.bufferSize))
	}

	if flags.noHandshake {
		opts = append(opts, agentchan.WithHandshake(false))
	}

	return opts, nil
}

func runAgent(cmd *cobra.Command, flags *runFlags) error {
	opts, err := buildOptions(cmd, flags)
	if err != nil {
		return err
	}

	log := agentchan.NewTextLogger(cmd.ErrOrStderr(), flags.verbose)
	out := cmd.OutOrStdout()

	opts = append(opts,
		agentchan.WithLogger(log),
		agentchan.WithInjector(func(text string) {
			fmt.Fprintln(out, text)
		}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch := agentchan.New(opts...)
	if err := ch.Start(ctx); err != nil {
		return err
	}

	defer ch.Close()

	if ch.State() != agentchan.StateRunning {
		return errors.New("no agent configured: set AGENTCHAN_AGENT or pass --agent")
	}

	var wake [2]int
	if err := unix.Pipe2(wake[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return fmt.Errorf("create wake pipe: %w", err)
	}

	defer func() {
		_ = unix.Close(wake[0])
		_ = unix.Close(wake[1])
	}()

	stdinFD := int(os.Stdin.Fd())
	if flags.noStdin {
		stdinFD = -1
	}

	loopCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(loopCtx)

	// Interrupts arrive on another goroutine; the self-pipe turns them into
	// a readable descriptor the select loop already watches.
	g.Go(func() error {
		<-gctx.Done()
		_, _ = unix.Write(wake[1], []byte{0})

		return nil
	})

	g.Go(func() error {
		defer cancel()

		return (&hostLoop{
			ch:      ch,
			stdinFD: stdinFD,
			wakeFD:  wake[0],
			log:     log,
		}).run()
	})

	err = g.Wait()
	if errors.Is(err, agentchan.ErrEndOfStream) {
		return nil
	}

	return err
}
