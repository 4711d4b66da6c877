package router

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// TrackInfo describes one finished request.
type TrackInfo struct {
	Time     time.Time
	Status   int
	Peer     string
	Method   string
	Path     string
	Duration time.Duration
}

// TrackFunc is called once per request after the request, its offloaded work
// and its after hooks have all completed.
type TrackFunc func(info TrackInfo)

// DefaultTrack logs each finished request at Info level.
func DefaultTrack(logger *zap.Logger) TrackFunc {
	return func(info TrackInfo) {
		logger.Info("Request",
			zap.Time("time", info.Time),
			zap.Int("status", info.Status),
			zap.String("remote_addr", info.Peer),
			zap.String("method", info.Method),
			zap.String("path", info.Path),
			zap.Duration("duration", info.Duration),
		)
	}
}

// ColoredTrack writes one colored line per finished request to out.
func ColoredTrack(out io.Writer) TrackFunc {
	methodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)

	return func(info TrackInfo) {
		styledStatus := statusStyle(info.Status).Render(fmt.Sprintf("%d", info.Status))
		fmt.Fprintf(out, "[SREST] %s | %s | %s | %s | %q | %s\n",
			info.Time.Format("2006-01-02 15:04:05"),
			styledStatus,
			info.Peer,
			methodStyle.Render(info.Method),
			info.Path,
			info.Duration,
		)
	}
}

// statusStyle returns a lipgloss style for HTTP status codes
func statusStyle(statusCode int) lipgloss.Style {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	case statusCode >= 300 && statusCode < 400:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	case statusCode >= 400 && statusCode < 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	case statusCode >= 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		return lipgloss.NewStyle()
	}
}
