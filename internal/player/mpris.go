// Package player talks MPRIS over the session bus: it discovers media
// players, subscribes to their signals, and tracks the playback position
// between updates.
package player

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/track"
)

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

var mprisLogger = log.With().Str("component", "mpris").Logger()

// ErrNoPlayer means no MPRIS-capable player is currently on the bus.
var ErrNoPlayer = errors.New("no mpris player found")

type Event int

const (
	EventTrackChanged Event = iota
	EventSeeked
	EventPlaybackChanged
	EventPlayerGone
)

// EventData is one player notification. Positions are in seconds.
type EventData struct {
	Type     Event
	Track    *track.Identity
	ArtURL   string
	Position float64
	Playing  bool
}

// Discover returns the bus name of an MPRIS player. When preferred is
// non-empty the first name containing it wins, otherwise the first
// player on the bus does.
func Discover(conn *dbus.Conn, preferred string) (string, error) {
	if conn == nil {
		return "", errors.New("nil dbus connection")
	}

	var names []string
	err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return "", fmt.Errorf("failed to list bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	if len(players) == 0 {
		return "", ErrNoPlayer
	}

	if preferred != "" {
		for _, name := range players {
			if strings.Contains(strings.ToLower(name), strings.ToLower(preferred)) {
				return name, nil
			}
		}
		return "", fmt.Errorf("no player matching %q: %w", preferred, ErrNoPlayer)
	}

	return players[0], nil
}

// Service subscribes to one player's MPRIS signals and translates them
// into events on a buffered channel. Emission never blocks; a consumer
// that falls behind loses intermediate events, and the next Poll
// reconciles.
type Service struct {
	bus        *dbus.Conn
	name       string
	signalChan chan *dbus.Signal
	eventChan  chan EventData
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewService(bus *dbus.Conn, busName string) (*Service, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if busName == "" {
		return nil, errors.New("empty player bus name")
	}

	return &Service{
		bus:       bus,
		name:      busName,
		eventChan: make(chan EventData, 16),
	}, nil
}

func (s *Service) Name() string { return s.name }

func (s *Service) Start() error {
	s.signalChan = make(chan *dbus.Signal, 10)
	s.stopChan = make(chan struct{})

	s.bus.Signal(s.signalChan)

	matches := []string{
		fmt.Sprintf(
			"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
			s.name, mprisPath,
		),
		fmt.Sprintf(
			"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
			s.name, mprisPlayerIface, mprisPath,
		),
		fmt.Sprintf(
			"type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged',arg0='%s'",
			s.name,
		),
	}
	for _, match := range matches {
		if err := s.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, match).Err; err != nil {
			return fmt.Errorf("failed to add signal match: %w", err)
		}
	}

	go s.signalLoop()

	return nil
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		if s.stopChan != nil {
			close(s.stopChan)
		}
	})
}

func (s *Service) Events() <-chan EventData {
	return s.eventChan
}

// Poll reads the player's current metadata, position, and status in one
// pass. Used to seed state at startup and to reconcile after missed
// signals.
func (s *Service) Poll() (EventData, error) {
	id, artURL, err := s.CurrentTrack()
	if err != nil {
		return EventData{}, err
	}

	pos, err := s.CurrentPosition()
	if err != nil {
		return EventData{}, err
	}

	playing, err := s.currentlyPlaying()
	if err != nil {
		return EventData{}, err
	}

	return EventData{
		Type:     EventTrackChanged,
		Track:    id,
		ArtURL:   artURL,
		Position: pos,
		Playing:  playing,
	}, nil
}

func (s *Service) CurrentTrack() (*track.Identity, string, error) {
	obj := s.bus.Object(s.name, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, "", fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	id, artURL := identityFromMetadata(metadata)
	if !id.Valid() {
		return nil, "", fmt.Errorf("metadata has no usable artist or title")
	}

	return id, artURL, nil
}

func (s *Service) CurrentPosition() (float64, error) {
	obj := s.bus.Object(s.name, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".Position")
	if err != nil {
		return 0, fmt.Errorf("failed to get position property: %w", err)
	}

	micros, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}
	if micros < 0 {
		return 0, nil
	}

	return float64(micros) / 1e6, nil
}

func (s *Service) currentlyPlaying() (bool, error) {
	obj := s.bus.Object(s.name, mprisPath)

	prop, err := obj.GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return false, fmt.Errorf("failed to get playback status: %w", err)
	}

	status, ok := prop.Value().(string)
	if !ok {
		return false, fmt.Errorf("unexpected playback status type %T", prop.Value())
	}

	return status == "Playing", nil
}

func (s *Service) signalLoop() {
	for {
		select {
		case sig, ok := <-s.signalChan:
			if !ok {
				return
			}
			s.handleSignal(sig)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleSignal(sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		s.handlePropertiesChanged(sig)
	case "org.mpris.MediaPlayer2.Player.Seeked":
		s.handleSeeked(sig)
	case "org.freedesktop.DBus.NameOwnerChanged":
		s.handleNameOwnerChanged(sig)
	}
}

func (s *Service) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != mprisPlayerIface {
		return
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	if metadataVariant, exists := changed["Metadata"]; exists {
		if metadata, ok := metadataVariant.Value().(map[string]dbus.Variant); ok {
			id, artURL := identityFromMetadata(metadata)
			if id.Valid() {
				s.emit(EventData{Type: EventTrackChanged, Track: id, ArtURL: artURL})
			} else {
				// a nil track clears downstream state
				mprisLogger.Debug().Msg("metadata signal without usable identity")
				s.emit(EventData{Type: EventTrackChanged})
			}
		}
	}

	if statusVariant, exists := changed["PlaybackStatus"]; exists {
		if status, ok := statusVariant.Value().(string); ok {
			s.emit(EventData{Type: EventPlaybackChanged, Playing: status == "Playing"})
		}
	}
}

func (s *Service) handleSeeked(sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}

	micros, ok := sig.Body[0].(int64)
	if !ok || micros < 0 {
		return
	}

	s.emit(EventData{Type: EventSeeked, Position: float64(micros) / 1e6})
}

func (s *Service) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}

	name, _ := sig.Body[0].(string)
	newOwner, _ := sig.Body[2].(string)
	if name != s.name || newOwner != "" {
		return
	}

	mprisLogger.Info().Str("player", s.name).Msg("player left the bus")
	s.emit(EventData{Type: EventPlayerGone})
}

func (s *Service) emit(event EventData) {
	select {
	case s.eventChan <- event:
	default:
	}
}

func identityFromMetadata(metadata map[string]dbus.Variant) (*track.Identity, string) {
	id := &track.Identity{
		Artist:   extractArtist(metadata, "xesam:artist"),
		Title:    extractString(metadata, "xesam:title"),
		Album:    extractString(metadata, "xesam:album"),
		Duration: extractDurationSeconds(metadata, "mpris:length"),
	}
	return id, extractString(metadata, "mpris:artUrl")
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	text, ok := variant.Value().(string)
	if !ok {
		return ""
	}
	return text
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		return strings.Join(typed, ", ")
	case string:
		return typed
	default:
		return ""
	}
}

func extractDurationSeconds(metadata map[string]dbus.Variant, key string) float64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		if typed <= 0 {
			return 0
		}
		return float64(typed) / 1e6
	case uint64:
		return float64(typed) / 1e6
	case float64:
		if typed <= 0 {
			return 0
		}
		return typed
	default:
		return 0
	}
}
