// metrics собирает прометеевские метрики сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector объединяет счётчики авторизационных событий и гистограмму
// длительности HTTP-запросов.
type Collector struct {
	logins        prometheus.Counter
	loginFailures prometheus.Counter
	refreshes     prometheus.Counter
	signouts      prometheus.Counter
	mailsSent     prometheus.Counter
	ordersCreated prometheus.Counter
	cacheUp       prometheus.Gauge
	httpDuration  *prometheus.HistogramVec
}

// NewCollector регистрирует метрики в переданном Registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_platform_logins_total",
			Help: "Successful logins.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_platform_login_failures_total",
			Help: "Failed credential validations.",
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_platform_token_refreshes_total",
			Help: "Successful access-token refreshes.",
		}),
		signouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_platform_signouts_total",
			Help: "Completed signouts.",
		}),
		mailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_platform_verification_mails_total",
			Help: "Verification emails dispatched.",
		}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_platform_orders_created_total",
			Help: "Orders accepted.",
		}),
		cacheUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "menu_platform_session_cache_up",
			Help: "Session cache availability (1 - reachable, 0 - down).",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menu_platform_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		c.logins,
		c.loginFailures,
		c.refreshes,
		c.signouts,
		c.mailsSent,
		c.ordersCreated,
		c.cacheUp,
		c.httpDuration,
	)

	return c
}

func (c *Collector) IncLogin()        { c.logins.Inc() }
func (c *Collector) IncLoginFailure() { c.loginFailures.Inc() }
func (c *Collector) IncRefresh()      { c.refreshes.Inc() }
func (c *Collector) IncSignout()      { c.signouts.Inc() }
func (c *Collector) IncMailSent()     { c.mailsSent.Inc() }
func (c *Collector) IncOrderCreated() { c.ordersCreated.Inc() }

// SetCacheUp выставляет индикатор доступности кэша сессий.
func (c *Collector) SetCacheUp(up bool) {
	if up {
		c.cacheUp.Set(1)
		return
	}
	c.cacheUp.Set(0)
}

// ObserveHTTP фиксирует длительность обработанного запроса.
func (c *Collector) ObserveHTTP(method string, status int, dur time.Duration) {
	c.httpDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(dur.Seconds())
}

// Handler возвращает обработчик /metrics для данного Gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
