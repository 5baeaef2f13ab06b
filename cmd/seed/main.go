// Command seed writes the bundled sample content to a JSON file. The output
// is a valid CONTENT_FILE for the server and a template for building bigger
// question packs.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/content"
)

func main() {
	out := flag.String("out", "content.json", "output path for the content file")
	flag.Parse()

	f := content.SampleFile()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode content: %v", err)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}

	log.Printf("wrote %s: %d categories, %d questions, %d topics, %d buzzer questions",
		*out, len(f.Categories), len(f.Questions), len(f.Topics), len(f.BuzzerQuestions))
}
