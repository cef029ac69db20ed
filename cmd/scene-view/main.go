// Command scene-view opens a scene file in a window with the editor
// windows: hierarchy, inspector, undo history and frame statistics.
package main

func main() {
	Execute()
}
