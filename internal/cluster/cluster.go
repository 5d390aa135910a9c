// Package cluster implements the single-pass greedy agglomerative
// clustering step of L5: articles are visited in descending score order and
// either merged into an existing cluster, attached as a secondary member,
// spawn a new cluster, or are discarded once the cluster cap is reached.
package cluster

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/simtext"
)

const (
	// DefaultClusterThreshold is the similarity above which an article
	// merges into a cluster and may become its new representative.
	DefaultClusterThreshold = 0.65
	// DefaultAttachThreshold is the similarity above which an article
	// attaches to a cluster as a secondary member without becoming the
	// representative.
	DefaultAttachThreshold = 0.55
	// DefaultMaxClusters bounds how many distinct clusters a run produces.
	DefaultMaxClusters = 5

	textPrefixChars = 600
)

// Options configures the clustering pass. Zero values fall back to spec
// defaults.
type Options struct {
	ClusterThreshold float64
	AttachThreshold  float64
	MaxClusters      int
	// NewID overrides cluster ID minting; tests can supply a deterministic
	// generator. Defaults to uuid.NewString.
	NewID func() string
}

func (o *Options) fillDefaults() {
	if o.ClusterThreshold <= 0 {
		o.ClusterThreshold = DefaultClusterThreshold
	}
	if o.AttachThreshold <= 0 {
		o.AttachThreshold = DefaultAttachThreshold
	}
	if o.MaxClusters <= 0 {
		o.MaxClusters = DefaultMaxClusters
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
}

type building struct {
	id       string
	repText  string
	rep      model.NormalizedArticle
	members  []model.NormalizedArticle
	reasons  map[string]struct{}
}

// Cluster performs the clustering pass. articles must already carry a
// populated Score (see package rank); Cluster re-sorts a copy by score
// descending before clustering, so callers may pass articles in any order.
func Cluster(articles []model.NormalizedArticle, opt Options) []model.StoryCluster {
	opt.fillDefaults()

	ordered := make([]model.NormalizedArticle, len(articles))
	copy(ordered, articles)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Score > ordered[j].Score })

	var clusters []*building
	for _, a := range ordered {
		text := simtext.Prefix(a.Title+" "+a.Excerpt, textPrefixChars)

		bestIdx := -1
		bestSim := -1.0
		for i, c := range clusters {
			sim := simtext.Similarity(text, c.repText)
			if sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}

		switch {
		case bestIdx >= 0 && bestSim >= opt.ClusterThreshold:
			c := clusters[bestIdx]
			c.members = append(c.members, a)
			addReasons(c.reasons, a.Reasons)
			if a.Score > c.rep.Score {
				c.rep = a
				c.repText = text
			}
		case bestIdx >= 0 && bestSim >= opt.AttachThreshold:
			c := clusters[bestIdx]
			c.members = append(c.members, a)
			addReasons(c.reasons, a.Reasons)
		case len(clusters) < opt.MaxClusters:
			c := &building{
				id:      opt.NewID(),
				repText: text,
				rep:     a,
				members: []model.NormalizedArticle{a},
				reasons: reasonSet(a.Reasons),
			}
			clusters = append(clusters, c)
		default:
			// cluster cap reached and no sufficiently similar cluster: discard
		}
	}

	out := make([]model.StoryCluster, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, finalize(c))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func finalize(c *building) model.StoryCluster {
	ordered := make([]model.NormalizedArticle, 0, len(c.members))
	ordered = append(ordered, c.rep)
	for _, m := range c.members {
		if m.ID == c.rep.ID {
			continue
		}
		ordered = append(ordered, m)
	}

	citations := make([]model.Citation, 0, len(ordered))
	for _, m := range ordered {
		citations = append(citations, model.Citation{Title: m.Title, URL: m.CanonicalURL})
	}

	reasons := make([]string, 0, len(c.reasons))
	for r := range c.reasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	return model.StoryCluster{
		ClusterID:      c.id,
		Representative: c.rep,
		Members:        ordered,
		Score:          c.rep.Score,
		Reasons:        reasons,
		Citations:      citations,
	}
}

func reasonSet(reasons []string) map[string]struct{} {
	m := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		m[r] = struct{}{}
	}
	return m
}

func addReasons(dst map[string]struct{}, reasons []string) {
	for _, r := range reasons {
		dst[r] = struct{}{}
	}
}
