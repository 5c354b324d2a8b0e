package main

import "log"

func main() {
	srv, err := NewServer()
	if err != nil {
		log.Fatalf("Server init failed: %v", err)
	}
	srv.Run()
}
