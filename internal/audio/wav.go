package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ReadWAV reads a mono 16-bit PCM WAV file and returns the samples as
// float32 values in [-1, 1) together with the declared sample rate.
func ReadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read and validate RIFF header (12 bytes)
	riffHeader := make([]byte, 12)
	if _, err := io.ReadFull(f, riffHeader); err != nil {
		return nil, 0, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a valid WAV file")
	}

	var numChannels, sampleRate, bitsPerSample int
	var dataSize int64
	var foundFmt, foundData bool

	for !foundData {
		// Chunk header: 4 bytes ID + 4 bytes size
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(f, chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, fmtData); err != nil {
				return nil, 0, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if len(fmtData) >= 16 {
				numChannels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
				sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
				bitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			}
			foundFmt = true

		case "data":
			dataSize = chunkSize
			foundData = true

		default:
			// Skip unknown chunks (LIST, INFO, etc.)
			if _, err := f.Seek(chunkSize, io.SeekCurrent); err != nil {
				return nil, 0, fmt.Errorf("failed to skip chunk %s: %w", chunkID, err)
			}
		}

		// WAV chunks are word-aligned (padded to even byte boundary)
		if chunkSize%2 != 0 && chunkID != "data" {
			f.Seek(1, io.SeekCurrent)
		}
	}

	if !foundFmt {
		return nil, 0, fmt.Errorf("fmt chunk not found")
	}
	if !foundData {
		return nil, 0, fmt.Errorf("data chunk not found")
	}
	if bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("only 16-bit WAV files are supported, got %d-bit", bitsPerSample)
	}
	if numChannels != 1 {
		return nil, 0, fmt.Errorf("only mono WAV files are supported, got %d channels", numChannels)
	}

	data := make([]byte, dataSize)
	n, err := io.ReadFull(f, data)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	return BytesToFloat32(data[:n]), sampleRate, nil
}

// BytesToFloat32 converts little-endian 16-bit signed PCM bytes to
// float32 samples in [-1, 1). A trailing odd byte is ignored.
func BytesToFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := 0; i < len(samples); i++ {
		sample := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}

// Duration returns the length of the sample buffer in seconds.
func Duration(samples []float32, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(len(samples)) / float64(sampleRate)
}
