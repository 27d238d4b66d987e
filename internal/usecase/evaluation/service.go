package evaluation

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/logger"
)

// Retriever finds passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query, instruction string, k int) ([]domain.RetrievedPassage, error)
}

// QueryResult holds the scores of one query.
type QueryResult struct {
	QueryID        string
	QueryText      string
	RetrievedIDs   []int64
	RelevantIDs    []int64
	PrecisionAtK   map[int]float64
	RecallAtK      map[int]float64
	ReciprocalRank float64
}

// Summary holds per-query results and their means.
type Summary struct {
	KValues       []int
	Queries       []QueryResult
	MeanPrecision map[int]float64
	MeanRecall    map[int]float64
	MRR           float64
}

// Service runs a dataset through the retriever.
type Service struct {
	retriever   Retriever
	instruction string
}

// New creates an evaluator that embeds queries with instruction.
func New(retriever Retriever, instruction string) *Service {
	return &Service{retriever: retriever, instruction: instruction}
}

// Run retrieves max(k) passages per query and scores them.
func (s *Service) Run(ctx context.Context, ds Dataset) (Summary, error) {
	if err := ds.Validate(); err != nil {
		return Summary{}, err
	}
	kValues := slices.Clone(ds.KValues)
	if len(kValues) == 0 {
		kValues = slices.Clone(DefaultKValues)
	}
	slices.Sort(kValues)
	kValues = slices.Compact(kValues)
	depth := kValues[len(kValues)-1]

	sum := Summary{
		KValues:       kValues,
		Queries:       make([]QueryResult, 0, len(ds.Queries)),
		MeanPrecision: make(map[int]float64, len(kValues)),
		MeanRecall:    make(map[int]float64, len(kValues)),
	}

	for i, q := range ds.Queries {
		passages, err := s.retriever.Retrieve(ctx, q.Text, s.instruction, depth)
		if err != nil {
			return Summary{}, fmt.Errorf("query %q: %w", q.ID, err)
		}
		retrieved := make([]int64, len(passages))
		for j, p := range passages {
			retrieved[j] = p.ProductID
		}

		id := q.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		res := score(id, q, retrieved, kValues)
		sum.Queries = append(sum.Queries, res)

		for _, k := range kValues {
			sum.MeanPrecision[k] += res.PrecisionAtK[k]
			sum.MeanRecall[k] += res.RecallAtK[k]
		}
		sum.MRR += res.ReciprocalRank

		logger.FromContext(ctx).Debug("Query evaluated",
			zap.String("query_id", id),
			zap.Float64("reciprocal_rank", res.ReciprocalRank),
		)
	}

	n := float64(len(sum.Queries))
	for _, k := range kValues {
		sum.MeanPrecision[k] /= n
		sum.MeanRecall[k] /= n
	}
	sum.MRR /= n
	return sum, nil
}

func score(id string, q Query, retrieved []int64, kValues []int) QueryResult {
	relevant := toSet(q.RelevantIDs)
	res := QueryResult{
		QueryID:        id,
		QueryText:      q.Text,
		RetrievedIDs:   retrieved,
		RelevantIDs:    q.RelevantIDs,
		PrecisionAtK:   make(map[int]float64, len(kValues)),
		RecallAtK:      make(map[int]float64, len(kValues)),
		ReciprocalRank: ReciprocalRank(retrieved, relevant),
	}
	for _, k := range kValues {
		res.PrecisionAtK[k] = PrecisionAtK(retrieved, relevant, k)
		res.RecallAtK[k] = RecallAtK(retrieved, relevant, k)
	}
	return res
}
