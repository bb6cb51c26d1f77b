// Command imgbatch applies editor operations to image files without the GUI.
package main

import "image-processor/cmd/imgbatch/cmd"

func main() {
	cmd.Execute()
}
