// Package sensor defines the decoded inertial sample and the conversions
// from fixed-point wire integers into physical units.
package sensor
