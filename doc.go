// Package geostat implements geostatistical estimation and simulation on
// irregularly sampled spatial data: theoretical and experimental variograms,
// variogram model fitting, ordinary/simple/universal/indicator/block kriging,
// leave-one-out cross-validation, sequential Gaussian and indicator
// simulation, confidence classification, and cell declustering.
//
// Coordinates are go3d float64 vec3 values; two-dimensional data sets use a
// zero z component. All operations are pure functions of their inputs.
// Simulation takes a caller-owned *rand.Rand so that a single seed fixes
// every realization.
package geostat
