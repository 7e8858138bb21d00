package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/downfa11-org/relay/pkg/client"
)

const usage = `Available commands:
CREATE <topic> <partitions>            - create topic
PRODUCE <topic> <partition> <msg...>   - append one message per argument
CONSUME <topic> <partition> <offset> <limit> - read entries by offset
HELP                                   - show this help
EXIT                                   - quit`

func main() {
	addr := flag.String("addr", "localhost:9000", "broker address")
	consumerID := flag.String("consumer", "", "consumer id (generated if empty)")
	compression := flag.String("compression", "none", "frame compression (must match broker)")
	flag.Parse()

	bc := client.NewBrokerClient([]string{*addr}, *consumerID)
	bc.SetCompression(*compression)
	defer bc.Close()

	fmt.Printf("Connected as '%s'. Type HELP for commands.\n\n", bc.ConsumerID())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "EXIT") {
			if err := bc.Quit(); err != nil {
				fmt.Println("ERROR:", err)
			}
			return
		}
		fmt.Println(runCommand(bc, line))
	}
}

func runCommand(bc *client.BrokerClient, line string) string {
	fields := strings.Fields(line)
	cmd := strings.ToUpper(fields[0])

	switch cmd {
	case "HELP":
		return usage

	case "CREATE":
		if len(fields) != 3 {
			return "ERROR: expected CREATE <topic> <partitions>"
		}
		partitions, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil || partitions == 0 {
			return "ERROR: partitions must be a positive integer"
		}
		if err := bc.CreateTopic(fields[1], uint32(partitions)); err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return fmt.Sprintf("Topic '%s' ready with %d partitions", fields[1], partitions)

	case "PRODUCE":
		if len(fields) < 4 {
			return "ERROR: expected PRODUCE <topic> <partition> <msg...>"
		}
		partition, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return "ERROR: invalid partition"
		}
		offsets, err := bc.Produce(fields[1], uint32(partition), fields[3:])
		if err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return fmt.Sprintf("OK offsets=%v", offsets)

	case "CONSUME":
		if len(fields) != 5 {
			return "ERROR: expected CONSUME <topic> <partition> <offset> <limit>"
		}
		partition, err1 := strconv.ParseUint(fields[2], 10, 32)
		offset, err2 := strconv.ParseUint(fields[3], 10, 32)
		limit, err3 := strconv.ParseUint(fields[4], 10, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			return "ERROR: partition, offset and limit must be integers"
		}
		records, err := bc.Consume(fields[1], uint32(partition), uint32(offset), uint32(limit))
		if err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		if len(records) == 0 {
			return "(caught up)"
		}
		var sb strings.Builder
		for _, r := range records {
			fmt.Fprintf(&sb, "%d: %s\n", r.Offset, r.Payload)
		}
		return strings.TrimRight(sb.String(), "\n")

	default:
		return "ERROR: unknown command. Type HELP for available commands."
	}
}
