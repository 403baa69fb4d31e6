// Streaming transcription with ffmpeg pipe: any input format is
// converted to raw 16 kHz mono PCM, chunked into a bounded capture
// queue, and transcribed window by window.
//
// Usage:
//   go run ./cmd/transcribe-stream -input audio.mp4
//   go run ./cmd/transcribe-stream -input audio.wav -chunk 10 -policy oldest

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"sawt/internal/asr"
	"sawt/internal/audio"
	"sawt/internal/capture"
)

const (
	sampleRate     = 16000
	bytesPerSample = 2 // 16-bit PCM
)

func main() {
	inputPath := flag.String("input", "", "Input audio/video file")
	chunkSec := flag.Float64("chunk", 10, "Chunk duration in seconds")
	modelDir := flag.String("model", "models/moonshine-tiny-ar", "Model directory")
	engineName := flag.String("engine", asr.EngineMoonshine, "Engine: moonshine or whisper")
	queueSize := flag.Int("queue", 8, "Capture queue capacity in chunks")
	policyName := flag.String("policy", "newest", "Backpressure policy when full: newest, oldest, block")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Usage: go run ./cmd/transcribe-stream -input <file>")
	}

	var policy capture.Policy
	switch *policyName {
	case "newest":
		policy = capture.DropNewest
	case "oldest":
		policy = capture.DropOldest
	case "block":
		policy = capture.Block
	default:
		log.Fatalf("Unknown policy %q, must be newest, oldest, or block", *policyName)
	}

	config, err := asr.NewConfig(*modelDir)
	if err != nil {
		log.Fatalf("Failed to load model config: %v", err)
	}
	config.Engine = *engineName
	if lib := os.Getenv("SAWT_ORT_LIBRARY"); lib != "" {
		config.ORTLibrary = lib
	}

	engine, err := asr.NewEngine(config)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	// ffmpeg converts the input to raw PCM on stdout
	cmd := exec.Command("ffmpeg",
		"-i", *inputPath,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Fatalf("Failed to get stdout pipe: %v", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start ffmpeg: %v", err)
	}

	queue := capture.NewQueue(*queueSize, policy)

	// Producer: read fixed-size chunks from the pipe into the queue.
	go func() {
		defer queue.Close()

		reader := bufio.NewReader(stdout)
		chunkBytes := int(*chunkSec*sampleRate) * bytesPerSample
		buffer := make([]byte, chunkBytes)

		for {
			n, err := io.ReadFull(reader, buffer)
			if n > 0 {
				queue.Push(audio.BytesToFloat32(buffer[:n]))
			}
			if err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					log.Printf("Read error: %v", err)
				}
				return
			}
		}
	}()

	ctx := context.Background()
	startTime := time.Now()
	chunkIndex := 0
	var allText string

	for chunk := range queue.Chunks() {
		chunkIndex++
		offset := float64(chunkIndex-1) * *chunkSec

		result, err := engine.Transcribe(ctx, chunk, sampleRate)
		if err != nil {
			log.Fatalf("Transcription failed at chunk %d: %v", chunkIndex, err)
		}

		fmt.Printf("[%6.1fs] %s\n", offset, result.Text)
		if result.Text != "" {
			if allText != "" {
				allText += " "
			}
			allText += result.Text
		}
	}

	if err := cmd.Wait(); err != nil {
		log.Fatalf("ffmpeg failed: %v", err)
	}

	fmt.Printf("\n--- Full transcription (%d chunks, %.1fs elapsed) ---\n", chunkIndex, time.Since(startTime).Seconds())
	fmt.Println(allText)
	if dropped := queue.Dropped(); dropped > 0 {
		fmt.Printf("Warning: %d chunks dropped (capture outpaced transcription)\n", dropped)
	}
}
