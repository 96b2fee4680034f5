// Package circuitbreaker 熔断器
//
// 三种状态：
//   - Closed：正常放行，统计窗口内累计失败
//   - Open：快速失败，Timeout 后进入 HalfOpen
//   - HalfOpen：放行最多 MaxRequests 个探测请求，成功则关闭，失败则重新打开
//
// 使用方式：
//
//	cb := circuitbreaker.New(circuitbreaker.Settings{Name: "google-oauth"})
//	err := cb.Do(func() error { return callGoogle(ctx) })
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen 熔断中，请求未执行
var ErrOpen = errors.New("circuit breaker is open")

// 默认参数
const (
	DefaultMaxRequests = 1
	DefaultInterval    = time.Minute
	DefaultTimeout     = 30 * time.Second
	DefaultMaxFailures = 5
)

// Settings 熔断器参数，零值字段取默认值
type Settings struct {
	Name string

	// MaxRequests 半开状态允许的探测请求数
	MaxRequests uint32

	// Interval 关闭状态下的统计窗口
	Interval time.Duration

	// Timeout 打开状态持续时间
	Timeout time.Duration

	// ReadyToTrip 默认连续失败 DefaultMaxFailures 次
	ReadyToTrip func(c Counts) bool

	// IsFailure 哪些错误计入失败；默认 err != nil
	// 调用方的参数错误（如授权码无效）不应让熔断器打开
	IsFailure func(err error) bool

	OnStateChange func(name string, from, to State)
}

// Counts 当前窗口内的统计
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker 熔断器，并发安全
type Breaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(Counts) bool
	isFailure     func(error) bool
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New 创建熔断器
func New(s Settings) *Breaker {
	b := &Breaker{
		name:          s.Name,
		maxRequests:   s.MaxRequests,
		interval:      s.Interval,
		timeout:       s.Timeout,
		readyToTrip:   s.ReadyToTrip,
		isFailure:     s.IsFailure,
		onStateChange: s.OnStateChange,
		now:           time.Now,
	}
	if b.maxRequests == 0 {
		b.maxRequests = DefaultMaxRequests
	}
	if b.interval <= 0 {
		b.interval = DefaultInterval
	}
	if b.timeout <= 0 {
		b.timeout = DefaultTimeout
	}
	if b.readyToTrip == nil {
		b.readyToTrip = func(c Counts) bool { return c.ConsecutiveFailures >= DefaultMaxFailures }
	}
	if b.isFailure == nil {
		b.isFailure = func(err error) bool { return err != nil }
	}
	b.expiry = b.now().Add(b.interval)
	return b
}

// Do 熔断时返回 ErrOpen，否则执行fn并原样返回其错误
func (b *Breaker) Do(fn func() error) error {
	generation, err := b.before()
	if err != nil {
		return err
	}
	err = fn()
	b.after(generation, !b.isFailure(err))
	return err
}

// State 当前状态
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, _ := b.current(b.now())
	return state
}

// Counts 当前窗口的统计
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

func (b *Breaker) before() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current(b.now())
	if state == StateOpen || (state == StateHalfOpen && b.counts.Requests >= b.maxRequests) {
		return generation, ErrOpen
	}
	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) after(before uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state, generation := b.current(now)
	// 期间状态已切换，本次结果作废
	if generation != before {
		return
	}

	if ok {
		b.counts.success()
		if state == StateHalfOpen {
			b.setState(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch state {
	case StateClosed:
		if b.readyToTrip(b.counts) {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

// current 处理窗口过期与 Open -> HalfOpen
func (b *Breaker) current(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if b.expiry.Before(now) {
			b.counts = Counts{}
			b.expiry = now.Add(b.interval)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	b.generation++
	b.counts = Counts{}

	switch state {
	case StateClosed:
		b.expiry = now.Add(b.interval)
	case StateOpen:
		b.expiry = now.Add(b.timeout)
	default:
		b.expiry = time.Time{}
	}

	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, state)
	}
}
