package api

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gehunter2001-alt/ruStore/handler"
)

// corsMiddleware 处理 CORS 跨域请求
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// 处理预检请求
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// recoverMiddleware 捕获 panic 防止服务崩溃
func recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// chain 链接多个中间件
func chain(f http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		f = middlewares[i](f)
	}
	return f
}

func SetupRoutes(h *handler.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	withMiddlewares := func(f http.HandlerFunc) http.HandlerFunc {
		return chain(f, corsMiddleware, recoverMiddleware)
	}

	optionsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	registerTaskRoutes := func(base string) {
		mux.HandleFunc("GET "+base, withMiddlewares(h.ListTasks))
		mux.HandleFunc("POST "+base, withMiddlewares(h.CreateTask))
		mux.HandleFunc("OPTIONS "+base, withMiddlewares(optionsHandler))

		mux.HandleFunc("GET "+base+"/stats", withMiddlewares(h.GetStats))

		// 手动重置：清空所有完成标记并把重置日期盖到今天
		mux.HandleFunc("POST "+base+"/reset", withMiddlewares(h.ResetTasks))

		mux.HandleFunc("PUT "+base+"/{id}", withMiddlewares(h.UpdateTask))
		mux.HandleFunc("POST "+base+"/{id}/toggle", withMiddlewares(h.ToggleTask))
		mux.HandleFunc("DELETE "+base+"/{id}", withMiddlewares(h.DeleteTask))
		mux.HandleFunc("OPTIONS "+base+"/{id}", withMiddlewares(optionsHandler))
	}

	registerIconRoutes := func(base string) {
		mux.HandleFunc("GET "+base, withMiddlewares(h.ListIcons))
		mux.HandleFunc("OPTIONS "+base, withMiddlewares(optionsHandler))
	}

	// Versioned routes with legacy aliases for backward compatibility
	registerTaskRoutes("/api/v1/tasks")
	registerTaskRoutes("/api/tasks")
	registerIconRoutes("/api/v1/icons")
	registerIconRoutes("/api/icons")

	mux.HandleFunc("/health", withMiddlewares(h.HealthCheck))

	// Swagger 文档（需要在 main 里 blank import docs 包注册文档内容）
	mux.HandleFunc("/swagger/", withMiddlewares(httpSwagger.WrapHandler))

	return mux
}
