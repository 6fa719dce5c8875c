package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region types

// Material is one corpus vector with the dimension it informs.
type Material struct {
	Segment string
	Vector  []float32
	Weight  float32
}

// Config for the corpus vector store.
type Config struct {
	Host        string // default localhost
	Port        int    // Qdrant gRPC port, default 6334
	UseTLS      bool
	Collections []string // scanned in order; default thoughts, messages
	ScrollLimit uint32   // max points per collection, default 4096
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        6334,
		Collections: []string{"thoughts", "messages"},
		ScrollLimit: 4096,
	}
}

// #endregion types

// #region client

// maxRecvBytes covers a full scroll page of wide vectors.
const maxRecvBytes = 64 * 1024 * 1024

// Client reads seeding material from Qdrant.
type Client struct {
	cfg    Config
	client *qdrant.Client
}

// NewClient connects to the corpus vector store.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = []string{"thoughts", "messages"}
	}
	if cfg.ScrollLimit == 0 {
		cfg.ScrollLimit = 4096
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvBytes)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to corpus store: %w", err)
	}
	return &Client{cfg: cfg, client: client}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Fetch scrolls every configured collection and returns the material found.
// Points carry a "category" payload key; categories map to dimensions through
// the axis catalog. Points without a usable category or vector are skipped.
func (c *Client) Fetch(ctx context.Context) ([]Material, error) {
	var out []Material
	for _, coll := range c.cfg.Collections {
		exists, err := c.client.CollectionExists(ctx, coll)
		if err != nil {
			return nil, fmt.Errorf("check collection %s: %w", coll, err)
		}
		if !exists {
			continue
		}

		points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: coll,
			Limit:          qdrant.PtrOf(c.cfg.ScrollLimit),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll %s: %w", coll, err)
		}

		for _, p := range points {
			vec := p.GetVectors().GetVector().GetData()
			if len(vec) != tensor.SegmentWidth {
				continue
			}
			category := p.GetPayload()["category"].GetStringValue()
			seg, ok := axes.DefaultSegmentForCategory[category]
			if !ok {
				continue
			}
			weight := float32(1.0)
			if w := p.GetPayload()["weight"].GetDoubleValue(); w > 0 {
				weight = float32(w)
			}
			out = append(out, Material{Segment: seg, Vector: vec, Weight: weight})
		}
	}
	return out, nil
}

// #endregion client

// #region aggregate

// Aggregate folds corpus material into a genesis tensor. Each dimension is
// the normalized weighted mean of its material; dimensions with none fall
// back to a seeded random unit direction so the tensor is always well formed.
func Aggregate(materials []Material, segMap tensor.SegmentMap, rng *rand.Rand) (tensor.StateTensor, error) {
	sums := make(map[string][]float32, tensor.SegmentCount)
	for _, m := range materials {
		if len(m.Vector) != tensor.SegmentWidth || m.Weight <= 0 {
			continue
		}
		acc, ok := sums[m.Segment]
		if !ok {
			acc = make([]float32, tensor.SegmentWidth)
			sums[m.Segment] = acc
		}
		for i, f := range m.Vector {
			acc[i] += m.Weight * f
		}
	}

	dims := make(map[string][]float32, tensor.SegmentCount)
	for _, name := range tensor.SegmentNames {
		acc, ok := sums[name]
		if ok && tensor.Norm(acc) > tensor.MinSegmentNorm {
			dims[name] = acc
			continue
		}
		v := make([]float32, tensor.SegmentWidth)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		dims[name] = v
	}

	x, err := tensor.Genesis(segMap, dims)
	if err != nil {
		return tensor.StateTensor{}, fmt.Errorf("aggregate seeds: %w", err)
	}
	return x, nil
}

// #endregion aggregate
