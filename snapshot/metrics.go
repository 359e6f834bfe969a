package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cowtree_updates_total",
	Help: "Number of map updates, by outcome at the root",
}, []string{"outcome"})

var rebalanceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cowtree_rebalance_total",
	Help: "Number of node splits, steals and merges",
}, []string{"outcome"})

var treeSize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cowtree_tree_size",
	Help: "Number of entries in the latest published version",
})

var treeHeight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cowtree_tree_height",
	Help: "Height of the latest published version",
})

var subscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cowtree_subscribers",
	Help: "Number of active event subscriptions",
})
