// autobot is an AI automation bot for email, social posts and files.
package main

import "github.com/linanwx/autobot/cmd"

func main() {
	cmd.Execute()
}
