package sysinfo

import (
	"fmt"
	"os"
	"os/user"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CPU describes one logical processor
type CPU struct {
	Model string
	MHz   float64
}

// GHz returns the clock speed in gigahertz
func (c CPU) GHz() float64 {
	return c.MHz / 1000
}

// Provider abstracts operating system queries for testability
type Provider interface {
	EOL() string
	CPUs() ([]CPU, error)
	HomeDir() (string, error)
	Username() (string, error)
	Arch() string
}

// OSProvider implements Provider using the running system
type OSProvider struct{}

// NewOSProvider creates a new OSProvider instance
func NewOSProvider() *OSProvider {
	return &OSProvider{}
}

// EOL returns the platform line ending
func (p *OSProvider) EOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// CPUs returns one entry per logical processor
func (p *OSProvider) CPUs() ([]CPU, error) {
	infos, err := cpu.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu info: %w", err)
	}

	// darwin and windows report one entry per package
	if len(infos) == 1 && runtime.GOOS != "linux" {
		cpus := make([]CPU, runtime.NumCPU())
		for i := range cpus {
			cpus[i] = CPU{Model: infos[0].ModelName, MHz: infos[0].Mhz}
		}
		return cpus, nil
	}

	cpus := make([]CPU, 0, len(infos))
	for _, info := range infos {
		cpus = append(cpus, CPU{Model: info.ModelName, MHz: info.Mhz})
	}
	return cpus, nil
}

func (p *OSProvider) HomeDir() (string, error) {
	return os.UserHomeDir()
}

func (p *OSProvider) Username() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to look up current user: %w", err)
	}
	return u.Username, nil
}

func (p *OSProvider) Arch() string {
	return runtime.GOARCH
}
