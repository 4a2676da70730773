package middleware

import "github.com/gin-gonic/gin"

// Interceptor wraps the rest of the request pipeline. An interceptor that
// does not call next short-circuits the request; it must write the response
// itself.
type Interceptor interface {
	Intercept(c *gin.Context, next func())
}

// InterceptorFunc adapts a plain function to Interceptor.
type InterceptorFunc func(c *gin.Context, next func())

func (f InterceptorFunc) Intercept(c *gin.Context, next func()) { f(c, next) }

// Pipeline is an ordered list of interceptors; index 0 runs outermost.
type Pipeline []Interceptor

func NewPipeline(list ...Interceptor) Pipeline {
	return Pipeline(list)
}

// Handler adapts the pipeline to a single gin middleware. Route handlers run
// only if every interceptor called next.
func (p Pipeline) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatched := false
		p.run(c, 0, &dispatched)
		if !dispatched {
			c.Abort()
		}
	}
}

func (p Pipeline) run(c *gin.Context, i int, dispatched *bool) {
	if i == len(p) {
		*dispatched = true
		c.Next()
		return
	}
	p[i].Intercept(c, func() { p.run(c, i+1, dispatched) })
}
