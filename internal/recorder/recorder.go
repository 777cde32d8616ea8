// Package recorder captures microphone audio into a file through an ffmpeg
// subprocess. A session runs until it is stopped or the configured maximum
// duration elapses; stopping is idempotent.
package recorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"captiondesk/internal/logging"
	"captiondesk/internal/textutil"
)

// ErrEmptyRecording is returned when capture produced no audio.
var ErrEmptyRecording = errors.New("recording is empty")

const (
	startupGrace = 250 * time.Millisecond
	stopGrace    = 1200 * time.Millisecond
)

// Config describes how the microphone is captured.
type Config struct {
	Command     string
	InputFormat string
	InputDevice string
	SampleRate  int
	Channels    int
	MaxDuration time.Duration
	OutputDir   string
	Format      string
}

func (c Config) withDefaults() Config {
	if c.Command == "" {
		c.Command = "ffmpeg"
	}
	if c.InputFormat == "" {
		c.InputFormat = "pulse"
	}
	if c.InputDevice == "" {
		c.InputDevice = "default"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.Format == "" {
		c.Format = "ogg"
	}
	if c.OutputDir == "" {
		c.OutputDir = os.TempDir()
	}
	return c
}

// Recording is a finished capture.
type Recording struct {
	Path     string
	Duration time.Duration
	Size     int64
}

// Recorder starts capture sessions.
type Recorder struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Recorder for cfg.
func New(cfg Config, logger *slog.Logger) *Recorder {
	return &Recorder{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "recorder"),
		now:    time.Now,
	}
}

var codecArgs = map[string][]string{
	"ogg":  {"-c:a", "libopus", "-b:a", "48k"},
	"webm": {"-c:a", "libopus", "-b:a", "48k"},
	"wav":  {"-c:a", "pcm_s16le"},
	"mp3":  {"-c:a", "libmp3lame", "-q:a", "4"},
	"m4a":  {"-c:a", "aac", "-b:a", "96k"},
}

func buildArgs(cfg Config, output string) []string {
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
	}
	if cfg.MaxDuration > 0 {
		args = append(args, "-t", strconv.FormatFloat(cfg.MaxDuration.Seconds(), 'f', -1, 64))
	}
	args = append(args, codecArgs[cfg.Format]...)
	return append(args, "-y", output)
}

// Start launches ffmpeg and returns the live session. label is folded into
// the output file name.
func (r *Recorder) Start(ctx context.Context, label string) (*Session, error) {
	if _, ok := codecArgs[r.cfg.Format]; !ok {
		return nil, fmt.Errorf("unsupported recording format %q", r.cfg.Format)
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create recording directory: %w", err)
	}
	started := r.now()
	output := filepath.Join(r.cfg.OutputDir, textutil.RecordingFileName(label, started, r.cfg.Format))

	cmd := exec.CommandContext(ctx, r.cfg.Command, buildArgs(r.cfg, output)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", r.cfg.Command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	session := &Session{
		output:  output,
		started: started,
		now:     r.now,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
		done:    make(chan struct{}),
		logger:  r.logger,
	}

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("%s exited before capture started: %w: %s", r.cfg.Command, err, strings.TrimSpace(stderr.String()))
		}
		session.finish(nil)
	case <-time.After(startupGrace):
		go session.watch()
	}

	r.logger.Info("recording started",
		logging.String("path", output),
		logging.Duration("max_duration", r.cfg.MaxDuration),
	)
	return session, nil
}

// Session is a live capture.
type Session struct {
	output  string
	started time.Time
	now     func() time.Time
	stderr  *bytes.Buffer
	process *os.Process
	waitErr <-chan error
	logger  *slog.Logger

	done     chan struct{}
	doneOnce sync.Once
	exitErr  error
	ended    time.Time

	stopOnce  sync.Once
	recording Recording
	stopErr   error
}

// Path is the file the session writes to.
func (s *Session) Path() string {
	return s.output
}

// Done is closed once ffmpeg exits, including when the maximum duration
// elapses on its own.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) watch() {
	err, ok := <-s.waitErr
	if !ok {
		err = nil
	}
	s.finish(err)
}

func (s *Session) finish(err error) {
	s.doneOnce.Do(func() {
		s.exitErr = normalizeExitErr(err)
		s.ended = s.now()
		close(s.done)
	})
}

// Stop ends the capture and returns the finished recording. Repeated calls
// return the same result.
func (s *Session) Stop() (Recording, error) {
	s.stopOnce.Do(func() {
		select {
		case <-s.done:
		default:
			if s.process != nil {
				_ = s.process.Signal(os.Interrupt)
			}
			select {
			case <-s.done:
			case <-time.After(stopGrace):
				if s.process != nil {
					_ = s.process.Kill()
				}
				<-s.done
			}
		}

		if s.exitErr != nil {
			s.stopErr = s.exitErr
			if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
				s.stopErr = fmt.Errorf("%w: %s", s.exitErr, msg)
			}
			return
		}

		info, err := os.Stat(s.output)
		if err != nil || info.Size() == 0 {
			s.stopErr = ErrEmptyRecording
			return
		}
		s.recording = Recording{
			Path:     s.output,
			Duration: s.ended.Sub(s.started),
			Size:     info.Size(),
		}
		s.logger.Info("recording finished",
			logging.String("path", s.output),
			logging.Duration("duration", s.recording.Duration),
			logging.String("size", textutil.FormatFileSize(info.Size())),
		)
	})
	return s.recording, s.stopErr
}

// normalizeExitErr treats a non-zero exit as success: ffmpeg exits non-zero
// when interrupted even though the file is finalized.
func normalizeExitErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
