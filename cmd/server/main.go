// @title						Ask Me After 3AM API
// @version					1.0
// @description				Streams late-night persona replies in the AI SDK data stream format.
// @BasePath					/api
package main

import (
	"os"

	"after3am/backend/internal/app"
)

func main() {
	os.Exit(app.Run())
}
