package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gridlink/gridlink/internal/logger"
	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/pkg/client"
	"github.com/gridlink/gridlink/pkg/config"
)

var (
	connectCode    uint32
	connectAgent   string
	connectSession string
	connectCaps    string
)

var connectCmd = &cobra.Command{
	Use:   "connect <host:port>",
	Short: "Open a circuit to a simulator and log its chat",
	Long: `Connect dials a simulator endpoint with a circuit code obtained from a
prior login, completes the handshake, and logs simulator chat until
interrupted. Intended for protocol debugging against a live grid or a local
OpenSimulator instance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := logger.Init(logger.Config(cfg.Logging)); err != nil {
			return err
		}

		addr, err := net.ResolveUDPAddr("udp", args[0])
		if err != nil {
			return err
		}
		agentID, err := uuid.Parse(connectAgent)
		if err != nil {
			return fmt.Errorf("agent id: %w", err)
		}
		sessionID, err := uuid.Parse(connectSession)
		if err != nil {
			return fmt.Errorf("session id: %w", err)
		}

		cl := client.New(cfg, agentID, sessionID)
		defer cl.Close()

		cl.Register(packets.TypeChatFromSimulator, func(from string, pkt packets.Packet) {
			chat := pkt.(*packets.ChatFromSimulator)
			logger.Info("chat",
				"from", string(chat.ChatData.FromName),
				"message", string(chat.ChatData.Message))
		})

		id, err := cl.Connect(addr, connectCode, connectCaps, true)
		if err != nil {
			return err
		}
		fmt.Printf("connected: circuit %s to %s\n", id, addr)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		fmt.Println("logging out")
		return cl.Logout()
	},
}

func init() {
	connectCmd.Flags().Uint32Var(&connectCode, "code", 0, "circuit code from login")
	connectCmd.Flags().StringVar(&connectAgent, "agent", "", "agent UUID from login")
	connectCmd.Flags().StringVar(&connectSession, "session", "", "session UUID from login")
	connectCmd.Flags().StringVar(&connectCaps, "caps", "", "event queue capability URL (optional)")
	_ = connectCmd.MarkFlagRequired("code")
	_ = connectCmd.MarkFlagRequired("agent")
	_ = connectCmd.MarkFlagRequired("session")
}
