package codegen

import (
	"fmt"
	"strings"
)

// callMethod is the private dispatch method every generated client carries.
const callMethod = `  private async call<T = unknown>(
    name: string,
    args: object
  ): Promise<T> {
    const result = await this.client.callTool({
      name,
      arguments: { ...args },
    });
    return result.structuredContent as T;
  }`

// ServerTypeDeclaration renders the declared interface type listing every
// operation's method signature.
func ServerTypeDeclaration(name string, plans []MethodPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("export type %s = {\n", name))
	for _, p := range plans {
		sb.WriteString(p.InterfaceSignature)
		sb.WriteString("\n")
	}
	sb.WriteString("};")
	return sb.String()
}

// Assemble renders the complete client module for peer from m's
// declarations, server type, dispatch method and methods.
func Assemble(m *ClientModule, peer Peer) string {
	endpoints := peer.Endpoints
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	quoted := make([]string, len(endpoints))
	for i, e := range endpoints {
		quoted[i] = quote(e)
	}

	privateKey := "privateKey"
	if peer.Credential != "" {
		privateKey = "privateKey = " + quote(peer.Credential)
	}

	serverName := ServerTypeName(m.ServerName)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("/**\n * Generated client for: %s\n", sanitizeComment(serverName)))
	sb.WriteString(" * This file is auto-generated. Do not edit manually.\n")
	sb.WriteString(" */\n\n")

	sb.WriteString(`import { Client } from "@modelcontextprotocol/sdk/client";
import type { Transport } from "@modelcontextprotocol/sdk/shared/transport.js";
import {
  NostrClientTransport,
  type NostrTransportOptions,
  PrivateKeySigner,
  ApplesauceRelayPool,
} from "@contextvm/sdk";

`)

	for _, d := range m.Declarations {
		sb.WriteString(strings.TrimRight(d.Text, "\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.ServerType)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("export class %s implements %s {\n", m.ClientName, serverName))
	sb.WriteString(fmt.Sprintf("  static readonly SERVER_PUBKEY = %s;\n", quote(peer.Identity)))
	sb.WriteString("  private client: Client;\n")
	sb.WriteString("  private transport: Transport;\n\n")

	sb.WriteString("  constructor(\n")
	sb.WriteString("    options: Partial<NostrTransportOptions> & { privateKey?: string; relays?: string[] } = {}\n")
	sb.WriteString("  ) {\n")
	sb.WriteString("    this.client = new Client({\n")
	sb.WriteString(fmt.Sprintf("      name: %s,\n", quote(m.ClientName)))
	sb.WriteString("      version: \"1.0.0\",\n")
	sb.WriteString("    });\n\n")

	sb.WriteString("    const {\n")
	sb.WriteString(fmt.Sprintf("      %s,\n", privateKey))
	sb.WriteString(fmt.Sprintf("      relays = [%s],\n", strings.Join(quoted, ", ")))
	sb.WriteString("      signer = new PrivateKeySigner(privateKey || \"\"),\n")
	sb.WriteString("      relayHandler = new ApplesauceRelayPool(relays),\n")
	sb.WriteString("      ...rest\n")
	sb.WriteString("    } = options;\n\n")

	sb.WriteString("    this.transport = new NostrClientTransport({\n")
	sb.WriteString(fmt.Sprintf("      serverPubkey: %s.SERVER_PUBKEY,\n", m.ClientName))
	sb.WriteString("      signer,\n")
	sb.WriteString("      relayHandler,\n")
	sb.WriteString("      isStateless: true,\n")
	sb.WriteString("      ...rest,\n")
	sb.WriteString("    });\n\n")

	sb.WriteString("    this.client.connect(this.transport).catch((error) => {\n")
	sb.WriteString("      console.error(`Failed to connect to server: ${error}`);\n")
	sb.WriteString("    });\n")
	sb.WriteString("  }\n\n")

	sb.WriteString("  async disconnect(): Promise<void> {\n")
	sb.WriteString("    await this.transport.close();\n")
	sb.WriteString("  }\n\n")

	sb.WriteString(m.CallMethod)
	sb.WriteString("\n")

	for _, method := range m.Methods {
		sb.WriteString("\n")
		sb.WriteString(method)
		sb.WriteString("\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}
