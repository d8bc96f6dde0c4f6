//go:build !race

package countercontention

const raceEnabled = false
