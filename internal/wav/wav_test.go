package wav

import (
	"bytes"
	"errors"
	"testing"
)

func TestConstants(t *testing.T) {
	// Verify WAV constants
	if HeaderSize != 44 {
		t.Errorf("HeaderSize = %d, want 44", HeaderSize)
	}
	if FormatPCM != 1 {
		t.Errorf("FormatPCM = %d, want 1", FormatPCM)
	}

	// Verify ASR contract constants
	if ASRSampleRate != 16000 {
		t.Errorf("ASRSampleRate = %d, want 16000", ASRSampleRate)
	}
	if ASRChannels != 1 {
		t.Errorf("ASRChannels = %d, want 1", ASRChannels)
	}
	if ASRBitsPerSample != 16 {
		t.Errorf("ASRBitsPerSample = %d, want 16", ASRBitsPerSample)
	}
}

func TestPutLE16(t *testing.T) {
	tests := []struct {
		name   string
		value  uint16
		expect []byte
	}{
		{"zero", 0, []byte{0x00, 0x00}},
		{"one", 1, []byte{0x01, 0x00}},
		{"256", 256, []byte{0x00, 0x01}},
		{"max", 0xFFFF, []byte{0xFF, 0xFF}},
		{"mixed", 0x1234, []byte{0x34, 0x12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 2)
			PutLE16(b, tt.value)
			if !bytes.Equal(b, tt.expect) {
				t.Errorf("PutLE16(%d) = %v, want %v", tt.value, b, tt.expect)
			}
		})
	}
}

func TestPutLE32(t *testing.T) {
	tests := []struct {
		name   string
		value  uint32
		expect []byte
	}{
		{"zero", 0, []byte{0x00, 0x00, 0x00, 0x00}},
		{"one", 1, []byte{0x01, 0x00, 0x00, 0x00}},
		{"256", 256, []byte{0x00, 0x01, 0x00, 0x00}},
		{"max", 0xFFFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"mixed", 0x12345678, []byte{0x78, 0x56, 0x34, 0x12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 4)
			PutLE32(b, tt.value)
			if !bytes.Equal(b, tt.expect) {
				t.Errorf("PutLE32(%d) = %v, want %v", tt.value, b, tt.expect)
			}
		})
	}
}

func TestGetLE_RoundTrip(t *testing.T) {
	b16 := make([]byte, 2)
	PutLE16(b16, 0x1234)
	if GetLE16(b16) != 0x1234 {
		t.Errorf("GetLE16 round trip = %#x, want 0x1234", GetLE16(b16))
	}

	b32 := make([]byte, 4)
	PutLE32(b32, 0x12345678)
	if GetLE32(b32) != 0x12345678 {
		t.Errorf("GetLE32 round trip = %#x, want 0x12345678", GetLE32(b32))
	}
}

func TestWrapRawPCM(t *testing.T) {
	pcmData := []byte{0x01, 0x02, 0x03, 0x04}
	wavData := WrapRawPCM(pcmData, 22050, 1, 16)

	// Check total size
	if len(wavData) != HeaderSize+len(pcmData) {
		t.Errorf("expected %d bytes, got %d", HeaderSize+len(pcmData), len(wavData))
	}

	// Check RIFF header
	if !bytes.Equal(wavData[0:4], []byte("RIFF")) {
		t.Errorf("missing RIFF header")
	}

	// Check WAVE format
	if !bytes.Equal(wavData[8:12], []byte("WAVE")) {
		t.Errorf("missing WAVE format")
	}

	// Check fmt chunk
	if !bytes.Equal(wavData[12:16], []byte("fmt ")) {
		t.Errorf("missing fmt chunk")
	}

	// Check data chunk
	if !bytes.Equal(wavData[36:40], []byte("data")) {
		t.Errorf("missing data chunk")
	}

	// Check file size (should be 36 + data size)
	if fileSize := GetLE32(wavData[4:8]); fileSize != uint32(36+len(pcmData)) {
		t.Errorf("file size = %d, want %d", fileSize, 36+len(pcmData))
	}

	// Check data size
	if dataSize := GetLE32(wavData[40:44]); dataSize != uint32(len(pcmData)) {
		t.Errorf("data size = %d, want %d", dataSize, len(pcmData))
	}

	// Check sample rate
	if sampleRate := GetLE32(wavData[24:28]); sampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", sampleRate)
	}

	// Check channels
	if channels := GetLE16(wavData[22:24]); channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}

	// Check bits per sample
	if bitsPerSample := GetLE16(wavData[34:36]); bitsPerSample != 16 {
		t.Errorf("bits per sample = %d, want 16", bitsPerSample)
	}

	// Check PCM data is at the end
	if !bytes.Equal(wavData[44:], pcmData) {
		t.Errorf("PCM data mismatch")
	}
}

func TestWrapRawPCM_Stereo(t *testing.T) {
	pcmData := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	wavData := WrapRawPCM(pcmData, 44100, 2, 16)

	// Check channels
	if channels := GetLE16(wavData[22:24]); channels != 2 {
		t.Errorf("channels = %d, want 2", channels)
	}

	// Check sample rate
	if sampleRate := GetLE32(wavData[24:28]); sampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", sampleRate)
	}

	// Check byte rate (44100 * 2 channels * 2 bytes = 176400)
	if byteRate := GetLE32(wavData[28:32]); byteRate != 176400 {
		t.Errorf("byte rate = %d, want 176400", byteRate)
	}

	// Check block align (2 channels * 2 bytes = 4)
	if blockAlign := GetLE16(wavData[32:34]); blockAlign != 4 {
		t.Errorf("block align = %d, want 4", blockAlign)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	wavData := WrapRawPCM([]byte{0x01, 0x02, 0x03, 0x04}, 16000, 1, 16)

	info, err := Parse(wavData)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if info.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Channels = %d, want 1", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", info.BitsPerSample)
	}
	if info.DataSize != 4 {
		t.Errorf("DataSize = %d, want 4", info.DataSize)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too short", []byte("RIFF")},
		{"not riff", bytes.Repeat([]byte{0xFF}, HeaderSize)},
		{"mp3 magic", append([]byte("ID3\x04\x00"), make([]byte, HeaderSize)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("Parse(%s) error = %v, want ErrInvalidHeader", tt.name, err)
			}
		})
	}
}

func TestIsWAV(t *testing.T) {
	if !IsWAV(CreateMinimalASR(10)) {
		t.Error("IsWAV(valid) = false, want true")
	}
	if IsWAV([]byte("definitely not audio")) {
		t.Error("IsWAV(garbage) = true, want false")
	}
}

func TestCreateMinimal(t *testing.T) {
	wav := CreateMinimal(100, 44100, 2, 16)

	// Expected size: 44 header + 100 samples * 2 channels * 2 bytes = 444
	expectedSize := HeaderSize + 100*2*2
	if len(wav) != expectedSize {
		t.Errorf("CreateMinimal(100, 44100, 2, 16) length = %d, want %d", len(wav), expectedSize)
	}

	// Data should be zeros (silence)
	for i := HeaderSize; i < len(wav); i++ {
		if wav[i] != 0 {
			t.Errorf("CreateMinimal should produce silence, got non-zero at byte %d", i)
			break
		}
	}
}

func TestCreateMinimalASR(t *testing.T) {
	wav := CreateMinimalASR(100)

	// Expected size: 44 header + 100 samples * 1 channel * 2 bytes = 244
	expectedSize := HeaderSize + 100*1*2
	if len(wav) != expectedSize {
		t.Errorf("CreateMinimalASR(100) length = %d, want %d", len(wav), expectedSize)
	}

	// Check ASR contract parameters
	info, err := Parse(wav)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if info.SampleRate != ASRSampleRate {
		t.Errorf("sample rate = %d, want %d", info.SampleRate, ASRSampleRate)
	}
	if info.Channels != ASRChannels {
		t.Errorf("channels = %d, want %d", info.Channels, ASRChannels)
	}
	if info.BitsPerSample != ASRBitsPerSample {
		t.Errorf("bits per sample = %d, want %d", info.BitsPerSample, ASRBitsPerSample)
	}
}

func TestWrapRawPCM_EmptyData(t *testing.T) {
	wav := WrapRawPCM(nil, 22050, 1, 16)

	// Should still produce valid header with zero-length data
	if len(wav) != HeaderSize {
		t.Errorf("WrapRawPCM(nil) length = %d, want %d", len(wav), HeaderSize)
	}

	// Data size should be 0
	if dataSize := GetLE32(wav[40:44]); dataSize != 0 {
		t.Errorf("data size = %d, want 0", dataSize)
	}
}
