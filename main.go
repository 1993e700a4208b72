package main

import (
	"log"

	"github.com/Bhadri2015-SB/Bedrock/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
