// Hand-written in the shape of MockGen output: a GoMock mock of
// common.Comparator instantiated for uint32 keys.

package btree

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockUint32Comparator is a mock of a common.Comparator[uint32].
type MockUint32Comparator struct {
	ctrl     *gomock.Controller
	recorder *MockUint32ComparatorMockRecorder
}

// MockUint32ComparatorMockRecorder is the mock recorder for MockUint32Comparator.
type MockUint32ComparatorMockRecorder struct {
	mock *MockUint32Comparator
}

// NewMockUint32Comparator creates a new mock instance.
func NewMockUint32Comparator(ctrl *gomock.Controller) *MockUint32Comparator {
	mock := &MockUint32Comparator{ctrl: ctrl}
	mock.recorder = &MockUint32ComparatorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockUint32Comparator) EXPECT() *MockUint32ComparatorMockRecorder {
	return m.recorder
}

// Compare mocks base method.
func (m *MockUint32Comparator) Compare(a, b *uint32) int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Compare", a, b)
	ret0, _ := ret[0].(int)
	return ret0
}

// Compare indicates an expected call of Compare.
func (mr *MockUint32ComparatorMockRecorder) Compare(a, b any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Compare", reflect.TypeOf((*MockUint32Comparator)(nil).Compare), a, b)
}
