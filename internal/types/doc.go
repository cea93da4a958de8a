/*
Package types defines the core data structures shared across DBC Studio.

# Overview

The package mirrors the JSON contract of the DBC editing server:

Database:
  - One loaded DBC file
  - Holds the node and message lists plus the source filename

Message:
  - One CAN frame definition
  - Identified by its numeric frame ID
  - Carries sender nodes, payload length, extended-frame flag and signals

Signal:
  - One field inside a message payload
  - Bit placement (start bit, length, byte order, signedness)
  - Physical scaling (factor, offset, minimum, maximum, unit)
  - Optional value table mapping raw integers to labels

Node:
  - One ECU on the bus, referenced by name from message senders and
    signal receivers

The *Update types are the request bodies for create and update calls.
They differ from the read types where the server contract does: a
message is created with a single sender, and a signal's empty choice
table is omitted rather than sent as an empty object.
*/
package types
