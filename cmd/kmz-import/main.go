package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/linergy/subtrans-ops/internal/client"
	"github.com/linergy/subtrans-ops/internal/locator"
)

func main() {
	_ = godotenv.Load()

	var (
		server   = flag.String("server", envOr("SERVER_URL", "http://localhost:8080"), "dashboard API base URL")
		email    = flag.String("email", os.Getenv("IMPORT_EMAIL"), "administrator email")
		password = flag.String("password", os.Getenv("IMPORT_PASSWORD"), "administrator password")
		timeout  = flag.Duration("timeout", 5*time.Minute, "overall import timeout")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: kmz-import [flags] <archivo.kmz>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required (flags or IMPORT_EMAIL/IMPORT_PASSWORD)")
		os.Exit(2)
	}

	path := flag.Arg(0)
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no se pudo abrir el archivo: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	locatorEndpoint := envOr("LOCATOR_ENDPOINT", *server+"/functions/v1/compute-fault-location")
	resolver := locator.NewClient(locatorEndpoint, os.Getenv("API_KEY"))
	c := client.New(*server, resolver, nil)

	if _, err := c.Login(ctx, *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "error de autenticación: %v\n", err)
		os.Exit(1)
	}

	summary, err := c.ImportKMZ(ctx, filepath.Base(path), file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error al importar: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importación completada: %d líneas, %d estructuras, %d omitidos\n",
		summary.Lineas, summary.Estructuras, summary.Omitidos)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
