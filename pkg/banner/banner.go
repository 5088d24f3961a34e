package banner

import (
	"fmt"
)

const banner = `
██████╗ ██╗      ██████╗  ██████╗██╗  ██╗███████╗██████╗
██╔══██╗██║     ██╔═══██╗██╔════╝██║ ██╔╝██╔════╝██╔══██╗
██████╔╝██║     ██║   ██║██║     █████╔╝ ███████╗██║  ██║
██╔══██╗██║     ██║   ██║██║     ██╔═██╗ ╚════██║██║  ██║
██████╔╝███████╗╚██████╔╝╚██████╗██║  ██╗███████║██████╔╝
╚═════╝ ╚══════╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝╚══════╝╚═════╝
`

// Print writes the startup banner with the effective runtime info.
func Print(addr, dbPath, endpoint, program, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	fmt.Printf("Ledger:   %s\n", endpoint)
	fmt.Printf("Program:  %s\n", program)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Sources:  %s\n", sources)
	}
	fmt.Println("===============================================================")
}
