package alert

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/news"
)

// Notifier receives every announced event.
type Notifier interface {
	Notify(ctx context.Context, ev news.Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev news.Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, ev news.Event) error {
	return f(ctx, ev)
}

// Speaker turns a phrase into speech.
type Speaker interface {
	Speak(ctx context.Context, phrase string) error
}

// SpeakerNotifier speaks the alert phrase for each event.
func SpeakerNotifier(s Speaker) Notifier {
	return NotifierFunc(func(ctx context.Context, ev news.Event) error {
		return s.Speak(ctx, Phrase(ev))
	})
}

// CommandSpeaker runs an external text-to-speech program with the phrase as the last argument.
type CommandSpeaker struct {
	Command string
	Args    []string
}

// Speak runs the command and waits for it to finish.
func (s CommandSpeaker) Speak(ctx context.Context, phrase string) error {
	args := append(append([]string(nil), s.Args...), phrase)
	cmd := exec.CommandContext(ctx, s.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", s.Command, err, out)
	}
	return nil
}

// LogSpeaker writes phrases to the log instead of speaking them.
type LogSpeaker struct {
	Log *zap.Logger
}

// Speak logs the phrase.
func (s LogSpeaker) Speak(_ context.Context, phrase string) error {
	if s.Log != nil {
		s.Log.Info("squawk", zap.String("phrase", phrase))
	}
	return nil
}

// DetectSpeaker returns a CommandSpeaker for command if it is on PATH.
// An empty command picks the platform default. It falls back to a LogSpeaker.
func DetectSpeaker(command string, log *zap.Logger) Speaker {
	candidates := []string{command}
	if command == "" {
		switch runtime.GOOS {
		case "darwin":
			candidates = []string{"say"}
		case "windows":
			candidates = nil
		default:
			candidates = []string{"spd-say", "espeak-ng", "espeak"}
		}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return CommandSpeaker{Command: path}
		}
	}
	if log != nil {
		log.Info("no speech command found, alerts will be logged only")
	}
	return LogSpeaker{Log: log}
}
