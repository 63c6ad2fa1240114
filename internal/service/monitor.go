package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和业务指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	StoreErrors    int64
	DBErrors       int64
	MQErrors       int64
	CheckoutErrors int64

	// 业务统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	EventsConsumed   int64

	// 时间统计
	LastStoreError   time.Time
	LastDBError      time.Time
	LastMQError      time.Time
	LastCheckoutTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordStoreError 记录购物车存储错误
func (m *Monitor) RecordStoreError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreErrors++
	m.LastStoreError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordCheckoutRequest 记录结算请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录下单成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordCheckoutError 记录下单失败
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// RecordEventConsumed 记录 analytics-worker 消费事件数
func (m *Monitor) RecordEventConsumed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsConsumed++
}

// MonitorSnapshot 指标快照，后台监控接口返回
type MonitorSnapshot struct {
	StoreErrors      int64     `json:"store_errors"`
	DBErrors         int64     `json:"db_errors"`
	MQErrors         int64     `json:"mq_errors"`
	CheckoutErrors   int64     `json:"checkout_errors"`
	CheckoutRequests int64     `json:"checkout_requests"`
	CheckoutSuccess  int64     `json:"checkout_success"`
	EventsConsumed   int64     `json:"events_consumed"`
	LastCheckoutTime time.Time `json:"last_checkout_time"`
}

// Snapshot 读取当前指标
func (m *Monitor) Snapshot() MonitorSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MonitorSnapshot{
		StoreErrors:      m.StoreErrors,
		DBErrors:         m.DBErrors,
		MQErrors:         m.MQErrors,
		CheckoutErrors:   m.CheckoutErrors,
		CheckoutRequests: m.CheckoutRequests,
		CheckoutSuccess:  m.CheckoutSuccess,
		EventsConsumed:   m.EventsConsumed,
		LastCheckoutTime: m.LastCheckoutTime,
	}
}
