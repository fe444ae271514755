package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"KATS-backend/internal/guardian"
	"KATS-backend/internal/history"
	"KATS-backend/internal/notify"
	"KATS-backend/internal/platform/auth"
	"KATS-backend/internal/platform/db"
	"KATS-backend/internal/reconcile"
	"KATS-backend/internal/student"
)

// 端末用フロントのビルド出力を埋め込む

//go:embed public
var embedded embed.FS

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// 通知の出口。APIキーが無ければコンソール出力（開発用）
	var dispatcher notify.Dispatcher
	if cfg.Notify.SendgridKey != "" {
		dispatcher = notify.NewSendgrid(cfg.Notify.SendgridKey, cfg.Notify.AppName, cfg.Notify.FromEmail)
		log.Printf("[INFO] notifier: sendgrid (from=%s)", cfg.Notify.FromEmail)
	} else {
		dispatcher = notify.NewConsole()
		log.Printf("[INFO] notifier: console (sendgrid key not set)")
	}

	studentStore := student.NewStore(conn)
	guardianSvc := guardian.NewService(guardian.NewStore(conn), dispatcher)
	studentSvc := student.NewService(studentStore, guardianSvc)
	reconcileSvc := reconcile.NewService(studentStore, cfg.Reconcile.CutoffHour)
	historySvc := history.NewService(studentStore)
	authSvc := auth.NewService(conn, cfg.Auth.JWTSecret)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)
	student.RegisterKioskRoutes(api, studentSvc)

	// 要認証（admin または guardian）
	authed := api.Group("", auth.RequireAuth(authSvc.Secret()))
	history.RegisterRoutes(authed, historySvc, guardianSvc)

	// adminのみ
	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	student.RegisterAdminRoutes(admin, studentSvc)
	guardian.RegisterAdminRoutes(admin, guardianSvc)
	reconcile.RegisterAdminRoutes(admin, reconcileSvc)
	auth.RegisterAdminRoutes(admin, authSvc)

	// 夜間の退室補完バッチ（22:30 JST）
	cronRunner, err := reconcile.StartCron(cfg.Reconcile.Schedule, reconcileSvc)
	if err != nil {
		log.Fatal(err)
	}

	sub, err := fs.Sub(embedded, "public")
	if err != nil {
		log.Fatal(err)
	}
	fileFS := http.FS(sub)

	r.NoRoute(func(c *gin.Context) {
		// API は対象外
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Status(http.StatusNotFound)
			return
		}

		reqPath := strings.TrimPrefix(c.Request.URL.Path, "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// 実ファイルがあるならそれを返す（Content-Type を推測、キャッシュ付与）
		if f, err := fileFS.Open(reqPath); err == nil {
			defer f.Close()
			if ct := mime.TypeByExtension(path.Ext(reqPath)); ct != "" {
				c.Header("Content-Type", ct)
			}
			// index.html 以外はキャッシュ（SPAの基本運用）
			if !strings.HasSuffix(reqPath, "index.html") {
				c.Header("Cache-Control", "public, max-age=86400, immutable")
			}
			if fileInfo, err := f.Stat(); err == nil {
				http.ServeContent(c.Writer, c.Request, reqPath, fileInfo.ModTime(), f)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		// なければ index.html にフォールバック
		if idx, err := fileFS.Open("index.html"); err == nil {
			defer idx.Close()
			c.Header("Content-Type", "text/html; charset=utf-8")
			if fileInfo, err := idx.Stat(); err == nil {
				http.ServeContent(c.Writer, c.Request, "index.html", fileInfo.ModTime(), idx)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		c.Status(http.StatusNotFound)
	})

	// TLS起動（:8443 例）
	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	var certFile, keyFile string

	// TLS設定
	if mode == "dev" {
		//開発用
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		//本番用
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Println("[INFO] listening on https://0.0.0.0:8443")
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	cronRunner.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
