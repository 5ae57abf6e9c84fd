package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const sessionTokenTTL = 24 * time.Hour

// SessionTokens issues the signed tokens returned by the room management
// calls. A valid token lets a dropped websocket client rejoin as the same
// player without resending join_room.
type SessionTokens struct {
	jwtSecret string
}

func NewSessionTokens(jwtSecret string) *SessionTokens {
	return &SessionTokens{jwtSecret}
}

// Generate embeds the player name so a reconnect after the registry entry is
// gone can still restore the player under their original name.
func (s SessionTokens) Generate(roomID, playerID, playerName string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"roomId":     roomID,
		"playerId":   playerID,
		"playerName": playerName,
		"exp":        jwt.NewNumericDate(time.Now().Add(sessionTokenTTL)),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

func (s SessionTokens) Parse(tokenString string) (roomID, playerID, playerName string, ok bool) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", "", false
	}
	claims, okClaims := token.Claims.(jwt.MapClaims)
	if !okClaims {
		return "", "", "", false
	}
	roomID, _ = claims["roomId"].(string)
	playerID, _ = claims["playerId"].(string)
	playerName, _ = claims["playerName"].(string)
	return roomID, playerID, playerName, roomID != "" && playerID != ""
}
