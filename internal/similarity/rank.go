package similarity

import (
	"math"
	"sort"
)

// DefaultThreshold is the score at or above which two items are reported as
// likely duplicates.
const DefaultThreshold = 0.6

// Document is one candidate text.
type Document struct {
	ID   int64
	Text string
}

// Match is a candidate that scored at or above the threshold.
type Match struct {
	ID    int64
	Score float64
}

// corpus collects document frequencies for smoothed IDF weights.
type corpus struct {
	docs int
	df   map[string]int
}

func (c *corpus) add(fp *Fingerprint) {
	c.docs++
	if fp == nil {
		return
	}
	for term := range fp.terms {
		c.df[term]++
	}
}

// idf uses ln((N+1)/(df+1)) + 1 so terms shared by every document still carry
// weight in small corpora.
func (c *corpus) idf() map[string]float64 {
	out := make(map[string]float64, len(c.df))
	n := float64(c.docs)
	for term, df := range c.df {
		out[term] = math.Log((n+1)/(float64(df)+1)) + 1
	}
	return out
}

// Rank scores candidates against target and returns matches with a score of
// at least threshold, best first. Ties keep the lower id first. A limit of
// zero or less returns every match.
func Rank(target string, candidates []Document, threshold float64, limit int) []Match {
	base := NewFingerprint(target)
	if base == nil {
		return nil
	}
	c := &corpus{df: make(map[string]int)}
	c.add(base)
	prints := make([]*Fingerprint, len(candidates))
	for i, doc := range candidates {
		prints[i] = NewFingerprint(doc.Text)
		c.add(prints[i])
	}
	idf := c.idf()
	weightedTarget := base.weighted(idf)

	var matches []Match
	for i, doc := range candidates {
		score := Cosine(weightedTarget, prints[i].weighted(idf))
		if score >= threshold && score > 0 {
			matches = append(matches, Match{ID: doc.ID, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
