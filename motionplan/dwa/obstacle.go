package dwa

import (
	"github.com/golang/geo/r2"
)

// Obstacle is a static circular occupancy primitive.
type Obstacle struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	R float64 `json:"r" mapstructure:"r"`
}

// Center returns the obstacle center.
func (o Obstacle) Center() r2.Point {
	return r2.Point{X: o.X, Y: o.Y}
}
