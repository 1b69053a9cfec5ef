package game

import "errors"

var (
	// ErrGameOver is returned when stepping a finished run
	ErrGameOver = errors.New("game is over")
)
