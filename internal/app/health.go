package app

import (
	"github.com/taoyao-code/zwave-configurator/internal/health"
)

// NewHealthAggregator 按已初始化的存储组件创建健康检查聚合器
func NewHealthAggregator(stores *Stores) *health.Aggregator {
	agg := health.NewAggregator()
	if stores != nil {
		for _, c := range stores.Checkers {
			agg.AddChecker(c)
		}
	}
	return agg
}
