// Package keyglow drives a keystroke heatmap effect on a keyboard LED matrix.
//
// The daemon talks to a matrix controller over a serial port: the controller
// reports key transitions, and keyglow periodically pushes back a full frame
// of gradient colors where frequently used keys run hot.
package keyglow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/keyglow/internal/led"
	"libdb.so/keyglow/matrixserial"
)

// Daemon is the main keyglow daemon.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger
	effect *Effect
}

// NewDaemon creates a new keyglow daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	effect := NewEffect(
		cfg.Matrix.Rows, cfg.Matrix.Cols,
		cfg.Heatmap.Palette,
		time.Duration(cfg.Heatmap.UpdateInterval),
	)

	return &Daemon{
		cfg:    cfg,
		logger: logger,
		effect: effect,
	}, nil
}

// Effect returns the daemon's heatmap effect. It must only be used before
// Run is called or from within the daemon's own callbacks; the effect is not
// safe for concurrent use.
func (d *Daemon) Effect() *Effect {
	return d.effect
}

// Run starts the daemon. It blocks until the given context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	return (&internalDaemon{Daemon: d}).Run(ctx)
}

type internalDaemon struct {
	*Daemon
	port serial.Port
}

func (d *internalDaemon) Run(ctx context.Context) error {
	port, err := serial.Open(d.cfg.Device, &serial.Mode{
		BaudRate: d.cfg.Baud,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer port.Close()

	d.port = port

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		d.logger.Debug("closing serial port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})

	outPackets := make(chan matrixserial.OutgoingPacket)
	errg.Go(func() error {
		return d.mainLoop(ctx, outPackets)
	})
	errg.Go(func() error {
		return d.readPackets(ctx, outPackets)
	})

	return errg.Wait()
}

func (d *internalDaemon) mainLoop(ctx context.Context, packets <-chan matrixserial.OutgoingPacket) error {
	d.logger.Debug("waiting 100ms for the read loop to start...")
	time.Sleep(100 * time.Millisecond)

	d.logger.Debug("sending initialize packet")
	if !d.writePacket(matrixserial.InitializePacket{
		Rows: uint8(d.cfg.Matrix.Rows),
		Cols: uint8(d.cfg.Matrix.Cols),
	}) {
		return errors.New("failed to initialize matrix")
	}

	frame := led.NewMatrix(d.cfg.Matrix.Rows, d.cfg.Matrix.Cols)

	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.TickRate()))
	defer ticker.Stop()

eventLoop:
	for {
		select {
		case <-ctx.Done():
			break eventLoop

		case p := <-packets:
			d.logger.Debug("handling packet", "type", p.Type())

			switch p := p.(type) {
			case matrixserial.KeyEventPacket:
				d.effect.HandleKeyEvent(KeyEvent{
					Row:   int(p.Row),
					Col:   int(p.Col),
					State: KeyState(p.State),
				})

			case matrixserial.AckPacket:
				d.logger.Debug(
					"received ack packet from controller",
					"acked_for", p.IncomingPacketType)

			case matrixserial.ErrorPacket:
				d.logger.Warn(
					"received error packet from controller",
					"message", p.Message)
				return errors.New("controller reported error")

			case matrixserial.PanicPacket:
				d.logger.Error("controller unrecoverably panicked")
				return errors.New("controller panicked")

			case matrixserial.LogPacket:
				d.logger.Info(
					"received log packet from controller",
					"message", p.Message)

			default:
				return fmt.Errorf("received unknown packet from controller: %s", p.Type())
			}

		case now := <-ticker.C:
			if d.effect.Tick(now, frame) {
				d.writePacket(matrixserial.SetPacket{
					Pix: frame.AsPixels(),
				})
			}
		}
	}

	// Leave the matrix dark on the way out.
	d.writePacket(matrixserial.ClearPacket{})

	return nil
}

func (d *internalDaemon) readPackets(ctx context.Context, dst chan<- matrixserial.OutgoingPacket) error {
	if err := d.port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	readCtx := matrixserial.ReadContext{
		Rows: uint8(d.cfg.Matrix.Rows),
		Cols: uint8(d.cfg.Matrix.Cols),
	}

	for ctx.Err() == nil {
		p, err := matrixserial.ReadOutgoingPacket(d.port, readCtx)
		if err != nil {
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		d.logger.Debug(
			"received packet from controller",
			"type", p.Type())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case dst <- p:
			// ok
		}
	}

	return ctx.Err()
}

func (d *internalDaemon) writePacket(p matrixserial.IncomingPacket) bool {
	d.logger.Debug(
		"writing packet",
		"type", p.Type())

	if err := matrixserial.WriteIncomingPacket(d.port, p); err != nil {
		d.logger.Warn(
			"failed to write packet",
			"packet", p.Type(),
			"error", err)
		return false
	}

	return true
}
