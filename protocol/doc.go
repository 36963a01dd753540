/*
# Alena Protocol

The Alena protocol operates over TCP. Each connection carries exactly one
request from a client followed by one response from the server, after
which the connection is closed.

    ----------     ----------     ----------
    | Client |     | Client |     | Client |
    ----------     ----------     ----------
         \             |             /
          \            |            /
           ---------------------------
           |      Alena Server       |
           |  handler -> queue ->    |
           |         worker          |
           ---------------------------

Clients submit a job of a known type and receive a task id. Later they
poll the task status over fresh connections and fetch the result once the
task is completed.

All communication is binary, every integer is a 4 byte big-endian
(network-order) unsigned integer.


## Binary Packet

A packet starts with the command tag:

    4 byte command  - An enumerated packet command. Possible values are:

                        #   Name                  Type
                        0   SUBMIT_REVERSE        Client
                        1   SUBMIT_TRANSPOSITION  Client
                        2   SUBMIT_ACK            Server
                        3   QUERY_STATUS          Client
                        4   STATUS_REPLY          Server
                        5   QUERY_RESULT          Client
                        6   RESULT_REPLY          Server

Text fields are UTF-8 encoded and preceded by their 4 byte length. A
length greater than 256 is rejected before the text is read.

Status codes:

                        #   Name
                        0   QUEUED
                        1   IN_PROGRESS
                        2   COMPLETED
                        3   NOT_FOUND      (reply only)


## Client Requests

    SUBMIT_REVERSE, SUBMIT_TRANSPOSITION

        Queue a job reversing the text, or swapping adjacent character
        pairs of the text. The server responds with SUBMIT_ACK.

        Arguments:
        - 4 byte text length.
        - Text.

    QUERY_STATUS

        Ask for the status of a task. The server responds with
        STATUS_REPLY.

        Arguments:
        - 4 byte task id.

    QUERY_RESULT

        Ask for the result of a task. The server responds with
        RESULT_REPLY.

        Arguments:
        - 4 byte task id.


## Server Responses

    SUBMIT_ACK

        Arguments:
        - 4 byte task id, assigned in increasing order from 0.

    STATUS_REPLY

        Arguments:
        - 4 byte status code, NOT_FOUND for an unknown task id.

    RESULT_REPLY

        Arguments:
        - 4 byte status code, COMPLETED or NOT_FOUND. NOT_FOUND is also
          sent while the task is not completed yet.
        - 4 byte text length, 0 with NOT_FOUND.
        - Result text.


## Errors

A malformed request (unknown or reply only command, oversized or
truncated text, invalid UTF-8) closes the connection without a response.


## Reserved

The design notes of the protocol describe a generic POST_TASK request and
its reply carrying only the text and the task id. That pair has no
command tag assigned: it is never sent and a packet claiming it is decoded
as an unknown command. Job types are selected by the SUBMIT_* commands.
*/
package protocol
