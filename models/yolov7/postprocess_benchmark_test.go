package yolov7

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/nvr-ai/go-yoloparse/tensors"
)

// 640x640 YOLOv7 emits 25200 candidate rows (3 anchors over 80x80, 40x40 and 20x20 grids).
const benchmarkRows = 25200

func benchmarkLayer(channels int) tensors.Layer {
	r := rand.New(rand.NewSource(7))
	buf := make([]float32, benchmarkRows*channels)
	for i := 0; i < benchmarkRows; i++ {
		row := buf[i*channels : (i+1)*channels]
		switch channels {
		case ChannelsRaw:
			row[0], row[1] = r.Float32()*640, r.Float32()*640
			row[2], row[3] = r.Float32()*200, r.Float32()*200
			row[4] = r.Float32() * 0.3
			for c := 5; c < ChannelsRaw; c++ {
				row[c] = r.Float32()
			}
		case ChannelsProcessed:
			x, y := r.Float32()*600, r.Float32()*600
			row[0], row[1], row[2], row[3] = x, y, x+r.Float32()*100, y+r.Float32()*100
			row[4] = r.Float32()
			row[5] = float32(r.Intn(RawClasses))
		}
	}
	return tensors.Layer{Name: "output", Buffer: buf, Shape: []int{1, benchmarkRows, channels}}
}

// BenchmarkParse_Raw measures the worst case: 25200 x 85 reads per call.
func BenchmarkParse_Raw(b *testing.B) {
	p, err := NewParser(NewParserArgs{})
	if err != nil {
		b.Fatal(err)
	}
	layers := []tensors.Layer{benchmarkLayer(ChannelsRaw)}
	thresholds := postprocess.UniformThresholds(RawClasses, 0.05)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(layers, frame640, thresholds); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParse_Processed measures the 6-channel path over the same row count.
func BenchmarkParse_Processed(b *testing.B) {
	p, err := NewParser(NewParserArgs{})
	if err != nil {
		b.Fatal(err)
	}
	layers := []tensors.Layer{benchmarkLayer(ChannelsProcessed)}
	thresholds := postprocess.UniformThresholds(RawClasses, 0.5)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(layers, frame640, thresholds); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_Concurrent(b *testing.B) {
	p, err := NewParser(NewParserArgs{})
	if err != nil {
		b.Fatal(err)
	}
	layers := []tensors.Layer{benchmarkLayer(ChannelsRaw)}
	thresholds := postprocess.UniformThresholds(RawClasses, 0.05)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := p.Parse(layers, frame640, thresholds); err != nil {
				b.Error(err)
			}
		}
	})
}
