// Package shell reads command lines and runs them as pipelines.
//
// It follows a cut down version of the steps in
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
//  1. Input is read a line at a time from stdin, which may be a terminal or a
//     script. Bytes after the current line are left for child processes.
//  2. The line is broken into words on blanks. Single and double quotes group
//     words and backslash escapes the next character. There are no operators
//     besides a word that is exactly "|".
//  3. The words are parsed into at most two simple commands joined by a pipe.
//  4. No expansions or redirections are performed.
//  5. A builtin runs in the shell, everything else is found on PATH and run
//     as a child process.
//  6. The shell waits for every child and keeps the exit status of the last
//     command.
package shell
