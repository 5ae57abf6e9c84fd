package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

type RoomPlayerLogger struct {
	zerolog zerolog.Logger
}

func GetRoomPlayerLogger(roomID string, playerID string) RoomPlayerLogger {
	return RoomPlayerLogger{log.With().Str("room-id", roomID).Str("player-id", playerID).Logger()}
}

func (l RoomPlayerLogger) JoinedRoom() {
	l.zerolog.Info().Msg("Joined room")
}

func (l RoomPlayerLogger) LeftRoom() {
	l.zerolog.Info().Msg("Left room")
}

func (l RoomPlayerLogger) Disconnected() {
	l.zerolog.Info().Msg("Disconnected")
}

func (l RoomPlayerLogger) DroppedFrame() {
	l.zerolog.Warn().Msg("Dropped frame for slow receiver")
}

func LogCreatedRoom(roomID string) {
	log.Info().Str("room-id", roomID).Msg("Created room")
}

func LogRemovingRoom(roomID string) {
	log.Info().Str("room-id", roomID).Msg("Removing empty room")
}

func LogStartedServer(port string) {
	log.Info().Msgf("Starting server on port %v", port)
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}
