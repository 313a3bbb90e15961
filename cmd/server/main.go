// Command server runs the hookserver CLI.
package main

import "yqhp/hookserver/cmd"

func main() {
	cmd.Execute()
}
