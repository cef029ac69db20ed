// Command scene-stress builds a large scene, mutates it from worker
// goroutines every frame and reports frame timings, per-system statistics
// and scene metrics.
package main

func main() {
	Execute()
}
