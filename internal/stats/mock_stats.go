package stats

import "github.com/stretchr/testify/mock"

type MockStatsRecorder struct {
	mock.Mock
}

func (m *MockStatsRecorder) Incr(name string) {
	m.Called(name)
}
func (m *MockStatsRecorder) RegisterMetric(name string) {
	m.Called(name)
}
