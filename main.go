package main

import "net/http"

func main() {
	config := MustLoadConfig()

	registry := NewRoomRegistry(config.GracePeriod)
	gateway := NewGateway(registry)
	broadcaster := NewBroadcaster(NewWSHub(), NewEventLog())
	registry.OnRoomDeleted = func(roomID string) {
		broadcaster.Hub.DropRoom(roomID)
		broadcaster.Log.Drop(roomID)
	}
	sessions := NewSessionTokens(config.JwtSecret)

	handler := NewHTTPServer(registry, gateway, broadcaster, sessions, config.AllowedOrigin)
	LogStartedServer(config.Port)
	http.ListenAndServe(":"+config.Port, handler)
}
