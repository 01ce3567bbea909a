package options

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
)

func TestBS_Prices_ReferenceCase(t *testing.T) {
	// 经典参数：S=100,K=100,r=0.05,sigma=0.2,T=1
	// 精确 N(x) 下 Call≈10.4506, Put≈5.5735；erf 近似带来 1e-5 级别偏差
	S, K, T, r, sigma := 100.0, 100.0, 1.0, 0.05, 0.2

	call, err := Price(S, K, T, r, sigma, Call)
	if err != nil {
		t.Fatalf("call err: %v", err)
	}
	put, err := Price(S, K, T, r, sigma, Put)
	if err != nil {
		t.Fatalf("put err: %v", err)
	}

	if !almostEqual(call, 10.450583572185565, 1e-4) {
		t.Fatalf("call price mismatch: got=%v", call)
	}
	if !almostEqual(put, 5.573526022256971, 1e-4) {
		t.Fatalf("put price mismatch: got=%v", put)
	}
}

func TestBS_Scenarios(t *testing.T) {
	cases := []struct {
		name               string
		S, K, T, r, sigma float64
		kind               Kind
		want               float64
	}{
		{"otm call 25vol", 100, 110, 1, 0.05, 0.25, Call, 8.0264},
		{"otm call 20vol", 100, 110, 1, 0.05, 0.20, Call, 6.0401},
		{"otm put", 50, 45, 0.5, 0.03, 0.15, Put, 0.3195},
		{"short dated call", 200, 220, 0.25, 0.045, 0.40, Call, 9.3020},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Price(c.S, c.K, c.T, c.r, c.sigma, c.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(got, c.want, 1e-2) {
				t.Fatalf("price mismatch: got=%v want=%v", got, c.want)
			}
		})
	}
}

func TestBS_PutCallParity(t *testing.T) {
	// Put-Call Parity: C - P = S - K*e^{-rT}
	for _, S := range []float64{50, 80, 100, 120, 200} {
		for _, K := range []float64{50, 90, 100, 110, 300} {
			for _, T := range []float64{0.01, 0.25, 1, 5} {
				for _, r := range []float64{0, 0.03, 0.1} {
					for _, sigma := range []float64{0.05, 0.2, 0.8} {
						call, _ := Price(S, K, T, r, sigma, Call)
						put, _ := Price(S, K, T, r, sigma, Put)

						left := call - put
						right := S - K*math.Exp(-r*T)
						if !almostEqual(left, right, 1e-4) {
							t.Fatalf("parity mismatch S=%v K=%v T=%v r=%v sigma=%v: left=%v right=%v",
								S, K, T, r, sigma, left, right)
						}
					}
				}
			}
		}
	}
}

func TestBS_NonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		S := 1 + rng.Float64()*500
		K := 1 + rng.Float64()*500
		T := 1e-4 + rng.Float64()*10
		r := -0.05 + rng.Float64()*0.3
		sigma := 1e-3 + rng.Float64()*3

		for _, kind := range []Kind{Call, Put} {
			p, err := Price(S, K, T, r, sigma, kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p < 0 || math.IsNaN(p) {
				t.Fatalf("negative price %v for S=%v K=%v T=%v r=%v sigma=%v %s", p, S, K, T, r, sigma, kind)
			}
		}
	}
}

func TestBS_MonotoneInVolatility(t *testing.T) {
	for _, kind := range []Kind{Call, Put} {
		for _, K := range []float64{80, 100, 120} {
			prev := 0.0
			for sigma := 0.05; sigma <= 2.0; sigma += 0.05 {
				p, err := Price(100, K, 0.5, 0.05, sigma, kind)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				// 容忍 erf 近似误差
				if p < prev-1e-5 {
					t.Fatalf("%s K=%v: price decreased at sigma=%v: %v < %v", kind, K, sigma, p, prev)
				}
				prev = p
			}
		}
	}
}

func TestBS_NegativeRateLongExpiry(t *testing.T) {
	// K*e^{-rT} 溢出为 +Inf 时，call 不能变成 NaN
	cases := []struct {
		T, r, sigma float64
	}{
		{10000, -0.1, 0.01},
		{1e308, -0.1, 0.2},
		{500, -2, 0.3},
	}
	for _, c := range cases {
		p, err := Price(100, 100, c.T, c.r, c.sigma, Call)
		if err != nil {
			t.Fatalf("T=%v r=%v: unexpected error: %v", c.T, c.r, err)
		}
		if math.IsNaN(p) || p < 0 {
			t.Fatalf("T=%v r=%v: call=%v, want finite >= 0", c.T, c.r, p)
		}
	}

	// put 的理论值本身溢出，报参数错误而不是返回 +Inf
	_, err := Price(100, 100, 10000, -0.1, 0.01, Put)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("put: expected ErrInvalidParameter, got %v", err)
	}
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Field != "rate" {
		t.Fatalf("put: expected rate ParamError, got %#v", err)
	}
}

func TestBS_WideParameterRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		T := 1e-4 + rng.Float64()*1e4
		r := -0.5 + rng.Float64()
		sigma := 1e-3 + rng.Float64()*5

		for _, kind := range []Kind{Call, Put} {
			p, err := Price(100, 90, T, r, sigma, kind)
			if err != nil {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("T=%v r=%v sigma=%v %s: unexpected error %v", T, r, sigma, kind, err)
				}
				continue
			}
			if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
				t.Fatalf("T=%v r=%v sigma=%v %s: price=%v", T, r, sigma, kind, p)
			}
		}
	}
}

func TestBS_HugeVolatility(t *testing.T) {
	// sigma² 溢出时仍应单调: call -> S, put -> K*e^{-rT}
	for _, kind := range []Kind{Call, Put} {
		base, err := Price(100, 100, 0.5, 0.05, 2, kind)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		huge, err := Price(100, 100, 0.5, 0.05, 1e155, kind)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if huge < base {
			t.Fatalf("%s: price at sigma=1e155 (%v) below sigma=2 (%v)", kind, huge, base)
		}
	}

	call, _ := Price(100, 100, 0.5, 0.05, 1e155, Call)
	if !almostEqual(call, 100, 1e-9) {
		t.Fatalf("call upper bound: got=%v want=100", call)
	}
	put, _ := Price(100, 100, 0.5, 0.05, 1e155, Put)
	if !almostEqual(put, 100*math.Exp(-0.025), 1e-9) {
		t.Fatalf("put upper bound: got=%v want=%v", put, 100*math.Exp(-0.025))
	}
}

func TestBS_NearExpiry_IntrinsicValue(t *testing.T) {
	T := 1e-10
	for _, S := range []float64{90, 100, 110} {
		for _, kind := range []Kind{Call, Put} {
			p, err := Price(S, 100, T, 0.05, 0.2, kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := IntrinsicValue(S, 100, kind)
			if !almostEqual(p, want, 1e-3) {
				t.Fatalf("%s S=%v: got=%v want intrinsic=%v", kind, S, p, want)
			}
		}
	}
}

func TestBS_Idempotent(t *testing.T) {
	first, _ := Price(100, 110, 1, 0.05, 0.25, Call)
	for i := 0; i < 10; i++ {
		again, _ := Price(100, 110, 1, 0.05, 0.25, Call)
		if again != first {
			t.Fatalf("price drifted: %v != %v", again, first)
		}
	}
}

func TestBS_Concurrent(t *testing.T) {
	want, _ := Price(50, 45, 0.5, 0.03, 0.15, Put)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				got, _ := Price(50, 45, 0.5, 0.03, 0.15, Put)
				if got != want {
					t.Errorf("concurrent price mismatch: %v != %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestBS_InvalidInputs(t *testing.T) {
	_, err := Price(0, 100, 1, 0.05, 0.2, Call)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for S=0, got %v", err)
	}
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Field != "spot" {
		t.Fatalf("expected spot ParamError, got %v", err)
	}

	cases := []struct {
		field             string
		S, K, T, r, sigma float64
	}{
		{"strike", 100, -1, 1, 0.05, 0.2},
		{"expiry", 100, 100, 0, 0.05, 0.2},
		{"volatility", 100, 100, 1, 0.05, -0.1},
		{"spot", math.NaN(), 100, 1, 0.05, 0.2},
		{"expiry", 100, 100, math.Inf(1), 0.05, 0.2},
		{"rate", 100, 100, 1, math.NaN(), 0.2},
	}
	for _, c := range cases {
		_, err := Price(c.S, c.K, c.T, c.r, c.sigma, Put)
		if !errors.As(err, &pe) || pe.Field != c.field {
			t.Fatalf("expected %s ParamError, got %v", c.field, err)
		}
	}

	_, err = Price(100, 100, 1, 0.05, 0.2, Kind("straddle"))
	if !errors.Is(err, ErrInvalidOptionType) {
		t.Fatalf("expected ErrInvalidOptionType, got %v", err)
	}

	// 数值校验优先于类型校验
	_, err = Price(0, 100, 1, 0.05, 0.2, Kind("straddle"))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter first, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"call": Call, "CALL": Call, "c": Call, " put ": Put, "P": Put} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("straddle"); !errors.Is(err, ErrInvalidOptionType) {
		t.Fatalf("expected ErrInvalidOptionType, got %v", err)
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
