package service

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

type Server interface {
	Init() error
	Start() error
	Stop() error
}

// Run drives the server lifecycle: Init, Start, block until SIGINT/SIGTERM,
// then Stop.
func Run(s Server) error {
	if err := s.Init(); err != nil {
		return err
	}

	if err := s.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Msgf("received signal %v, shutting down", sig)

	return s.Stop()
}
