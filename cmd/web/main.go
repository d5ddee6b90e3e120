package main

import "dentwork_backend/internal/app"

func main() {
	app.Run()
}
